package backend

import "testing"

func TestNullOutput_PullDrivesInstalledCallback(t *testing.T) {
	out := NewNullOutput(2, 44100, 128)

	var gotFrames uint64
	var gotLen int
	out.SetCallback(func(output []float32, frameCount uint64) {
		gotFrames = frameCount
		gotLen = len(output)
		for i := range output {
			output[i] = 0.5
		}
	})

	buf := out.Pull(64)
	if gotFrames != 64 {
		t.Fatalf("expected callback to see frameCount=64, got %d", gotFrames)
	}
	if gotLen != 128 {
		t.Fatalf("expected callback buffer sized frames*channels=128, got %d", gotLen)
	}
	if len(buf) != 128 {
		t.Fatalf("expected returned buffer length 128, got %d", len(buf))
	}
	for i, v := range buf {
		if v != 0.5 {
			t.Fatalf("sample %d: expected 0.5, got %v", i, v)
		}
	}
}

func TestNullOutput_PullWithNoCallbackReturnsSilence(t *testing.T) {
	out := NewNullOutput(1, 44100, 128)
	buf := out.Pull(32)
	if len(buf) != 32 {
		t.Fatalf("expected 32 samples, got %d", len(buf))
	}
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d: expected silence, got %v", i, v)
		}
	}
}

func TestNullOutput_StartStopTogglesRunning(t *testing.T) {
	out := NewNullOutput(2, 48000, 256)
	if err := out.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := out.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNullOutput_Enumerate(t *testing.T) {
	out := NewNullOutput(2, 48000, 256)
	infos, err := out.Enumerate()
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "null" {
		t.Fatalf("unexpected enumerate result: %+v", infos)
	}
}

func TestNullOutput_AccessorsReflectConstruction(t *testing.T) {
	out := NewNullOutput(4, 48000, 512)
	if out.ChannelCount() != 4 || out.SampleRate() != 48000 || out.MaxPeriod() != 512 {
		t.Fatalf("accessors did not reflect constructor args: %+v", out)
	}
}
