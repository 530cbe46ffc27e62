package dto

type SubmissionActionRequest struct {
	Action     string  `json:"action"`
	AdminNotes *string `json:"admin_notes"`
}

type ContactUpdateRequest struct {
	IsRead     *bool   `json:"is_read"`
	AdminNotes *string `json:"admin_notes"`
}
