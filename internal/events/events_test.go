package events

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	var p Publisher = r
	if err := p.Publish(SubjectDatasetLoaded, DatasetLoaded{SessionID: "s1", Records: 3}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Publish(SubjectCachesCleared, CachesCleared{SessionID: "s1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	want := []string{SubjectDatasetLoaded, SubjectCachesCleared}
	if got := r.Subjects(); !reflect.DeepEqual(got, want) {
		t.Fatalf("subjects = %v, want %v", got, want)
	}
	var ev DatasetLoaded
	if err := json.Unmarshal(r.Events()[0].Payload, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.SessionID != "s1" || ev.Records != 3 {
		t.Fatalf("unexpected payload %+v", ev)
	}
}

func TestRecorderRejectsUnmarshalable(t *testing.T) {
	r := NewRecorder()
	if err := r.Publish("x", make(chan int)); err == nil {
		t.Fatal("expected marshal error")
	}
	if len(r.Events()) != 0 {
		t.Fatal("failed publish should not be recorded")
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(SubjectReportBuilt, ReportBuilt{}); err != nil {
		t.Fatalf("Nop publish: %v", err)
	}
	p.Close()
}
