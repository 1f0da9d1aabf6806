package wire

import "testing"

func TestSplitAudioUpload_ParsesFilenameAndPayload(t *testing.T) {
	frame := []byte("song.mp3$\x00\x01\x02")
	name, payload, ok := SplitAudioUpload(frame)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if name != "song.mp3" {
		t.Errorf("name = %q, want %q", name, "song.mp3")
	}
	if len(payload) != 3 {
		t.Errorf("len(payload) = %d, want 3", len(payload))
	}
}

func TestSplitAudioUpload_NoSeparatorFails(t *testing.T) {
	if _, _, ok := SplitAudioUpload([]byte("nodollarhere")); ok {
		t.Error("expected ok=false without a separator")
	}
}
