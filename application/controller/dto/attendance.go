package dto

import (
	"fmt"

	"facemark.io/application/utils"
)

// VerifyAttendanceDTO is the flash-challenge payload: one frame burst
// captured before the illumination pulse and one after, both base64 encoded.
type VerifyAttendanceDTO struct {
	BeforeFrames []string `json:"before_frames" validate:"required,frame_batch"`
	AfterFrames  []string `json:"after_frames" validate:"required,frame_batch"`
}

// DecodeFrames decodes both batches into raw image bytes. The frame index
// is reported on failure so clients can pinpoint the bad capture.
func (d *VerifyAttendanceDTO) DecodeFrames() (before [][]byte, after [][]byte, err error) {
	before, err = decodeFrameBatch(d.BeforeFrames, "before_frames")
	if err != nil {
		return nil, nil, err
	}
	after, err = decodeFrameBatch(d.AfterFrames, "after_frames")
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

func decodeFrameBatch(frames []string, field string) ([][]byte, error) {
	decoded := make([][]byte, len(frames))
	for i, frame := range frames {
		raw, err := utils.DecodeBase64Image(frame)
		if err != nil {
			return nil, fmt.Errorf("%s[%d] is not valid base64 image data", field, i)
		}
		decoded[i] = raw
	}
	return decoded, nil
}

// AttendanceRecordsResponse lists a subject's accepted events.
type AttendanceRecordsResponse struct {
	SubjectKey string      `json:"subject_key"`
	Events     interface{} `json:"events"`
}
