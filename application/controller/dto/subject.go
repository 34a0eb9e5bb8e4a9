package dto

// EnrollSubjectDTO registers a subject with one reference image. The image
// is base64 encoded; at least one detectable face is required.
type EnrollSubjectDTO struct {
	Name      string  `json:"name" validate:"required,max=150"`
	RollNo    string  `json:"roll_no" validate:"required,max=50"`
	ClassName *string `json:"class_name,omitempty" validate:"omitempty,max=100"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Image     string  `json:"image" validate:"required"`
}
