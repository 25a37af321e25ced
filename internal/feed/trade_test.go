package feed

import (
	"encoding/json"
	"testing"
)

func TestUpdateUnmarshal(t *testing.T) {
	line := `{"platform_time":1700000000123,"exchange_time":1700000000100,` +
		`"seq_no":42,"side":"Ask","price":123.45,"amount":6.78,"is_eot":false}`

	var u Update
	if err := json.Unmarshal([]byte(line), &u); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if u.PlatformTime != 1700000000123 {
		t.Errorf("PlatformTime = %d", u.PlatformTime)
	}
	if u.SeqNo == nil || *u.SeqNo != 42 {
		t.Errorf("SeqNo = %v, want 42", u.SeqNo)
	}
	if u.Side != SideAsk {
		t.Errorf("Side = %q, want Ask", u.Side)
	}
	if u.Price != 123.45 || u.Amount != 6.78 {
		t.Errorf("Price, Amount = %v, %v", u.Price, u.Amount)
	}
}

func TestUpdateUnmarshalNullSeqNo(t *testing.T) {
	line := `{"platform_time":1,"exchange_time":2,"seq_no":null,"side":"Bid",` +
		`"price":1.0,"amount":0.0,"is_eot":true}`

	var u Update
	if err := json.Unmarshal([]byte(line), &u); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if u.SeqNo != nil {
		t.Errorf("SeqNo = %v, want nil", u.SeqNo)
	}
	if u.Side != SideBid {
		t.Errorf("Side = %q, want Bid", u.Side)
	}
	if !u.IsEOT {
		t.Error("IsEOT = false, want true")
	}
}

func TestUpdateUnmarshalRejectsUnknownSide(t *testing.T) {
	line := `{"platform_time":1,"exchange_time":2,"side":"Mid","price":1,"amount":1}`

	var u Update
	if err := json.Unmarshal([]byte(line), &u); err == nil {
		t.Fatal("expected error for unknown side")
	}
}
