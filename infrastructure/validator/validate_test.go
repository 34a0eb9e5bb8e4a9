package validator

import "testing"

type framePayload struct {
	Frames []string `validate:"required,frame_batch"`
}

type embeddingPayload struct {
	Vector []float64 `validate:"required,embedding"`
}

func TestFrameBatchRule(t *testing.T) {
	tests := []struct {
		name    string
		payload framePayload
		wantErr bool
	}{
		{"valid batch", framePayload{Frames: []string{"a", "b"}}, false},
		{"empty batch", framePayload{Frames: []string{}}, true},
		{"blank frame", framePayload{Frames: []string{"a", ""}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidatorInstance.ValidateStruct(tt.payload)
			if (errs != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestEmbeddingRule(t *testing.T) {
	if errs := ValidatorInstance.ValidateStruct(embeddingPayload{Vector: make([]float64, 512)}); errs != nil {
		t.Errorf("ValidateStruct() rejected a 512-d vector: %v", errs)
	}
	if errs := ValidatorInstance.ValidateStruct(embeddingPayload{Vector: make([]float64, 128)}); errs == nil {
		t.Error("ValidateStruct() accepted a 128-d vector")
	}
}
