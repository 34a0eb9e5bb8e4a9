package dto

import (
	"encoding/base64"
	"strings"
	"testing"
)

func b64(payload string) string {
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestDecodeFrames(t *testing.T) {
	tests := []struct {
		name    string
		payload VerifyAttendanceDTO
		wantErr bool
		errPart string
	}{
		{
			name: "valid batches",
			payload: VerifyAttendanceDTO{
				BeforeFrames: []string{b64("frame-1"), b64("frame-2")},
				AfterFrames:  []string{b64("frame-3"), b64("frame-4")},
			},
		},
		{
			name: "data url frames",
			payload: VerifyAttendanceDTO{
				BeforeFrames: []string{"data:image/jpeg;base64," + b64("frame-1")},
				AfterFrames:  []string{b64("frame-2")},
			},
		},
		{
			name: "invalid before frame",
			payload: VerifyAttendanceDTO{
				BeforeFrames: []string{b64("frame-1"), "not-base64!!!"},
				AfterFrames:  []string{b64("frame-2"), b64("frame-3")},
			},
			wantErr: true,
			errPart: "before_frames[1]",
		},
		{
			name: "invalid after frame",
			payload: VerifyAttendanceDTO{
				BeforeFrames: []string{b64("frame-1")},
				AfterFrames:  []string{""},
			},
			wantErr: true,
			errPart: "after_frames[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, after, err := tt.payload.DecodeFrames()
			if tt.wantErr {
				if err == nil {
					t.Fatal("DecodeFrames() error = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errPart) {
					t.Errorf("DecodeFrames() error = %q, want it to name %q", err, tt.errPart)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeFrames() error = %v", err)
			}
			if len(before) != len(tt.payload.BeforeFrames) || len(after) != len(tt.payload.AfterFrames) {
				t.Errorf("DecodeFrames() lengths = %d/%d, want %d/%d",
					len(before), len(after), len(tt.payload.BeforeFrames), len(tt.payload.AfterFrames))
			}
		})
	}
}
