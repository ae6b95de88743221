package handler

import (
	"time"

	"admitflow/internal/application/models"
)

// applicationResponse is the wire shape of an application. Document paths are
// grouped so clients can render the checklist without knowing slot names.
type applicationResponse struct {
	ID int64 `json:"id"`

	StudentName string `json:"student_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dob,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Pincode     string `json:"pincode,omitempty"`

	Qualification string `json:"qualification,omitempty"`
	Percentage    string `json:"percentage,omitempty"`
	ExamName      string `json:"exam_name,omitempty"`
	ExamRank      string `json:"exam_rank,omitempty"`

	CourseID    int64   `json:"course_id"`
	Preferences []int64 `json:"preferences,omitempty"`

	Documents map[string]*string `json:"documents"`

	IsDraft           bool       `json:"is_draft"`
	Status            string     `json:"status"`
	AdminVerified     bool       `json:"admin_verified"`
	FacultyVerified   bool       `json:"faculty_verified"`
	DocumentsVerified bool       `json:"documents_verified"`
	SelectionStatus   string     `json:"selection_status"`
	InterviewDate     *time.Time `json:"interview_date,omitempty"`
	AdmitCardPath     *string    `json:"admit_card_path,omitempty"`

	PaymentStatus string     `json:"payment_status"`
	PaymentAmount string     `json:"payment_amount,omitempty"`
	PaymentID     *string    `json:"payment_id,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	ReceiptPath   *string    `json:"receipt_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func toResponse(app *models.Application) applicationResponse {
	resp := applicationResponse{
		ID:          app.ID,
		StudentName: app.StudentName,
		Email:       app.Email,
		Phone:       app.Phone,
		DateOfBirth: app.DateOfBirth,
		Gender:      app.Gender,
		Address:     app.Address,
		City:        app.City,
		State:       app.State,
		Pincode:     app.Pincode,

		Qualification: app.Qualification,
		Percentage:    app.Percentage,
		ExamName:      app.ExamName,
		ExamRank:      app.ExamRank,

		CourseID:    app.CourseID,
		Preferences: app.Preferences,

		Documents: make(map[string]*string, len(models.DocumentFields)),

		IsDraft:           app.IsDraft,
		Status:            string(app.Status),
		AdminVerified:     app.AdminVerified,
		FacultyVerified:   app.FacultyVerified,
		DocumentsVerified: app.DocumentsVerified,
		SelectionStatus:   string(app.SelectionStatus),
		InterviewDate:     app.InterviewDate,
		AdmitCardPath:     app.AdmitCardPath,

		PaymentStatus: string(app.PaymentStatus),
		PaymentID:     app.PaymentID,
		PaymentDate:   app.PaymentDate,
		ReceiptPath:   app.ReceiptPath,

		CreatedAt: app.CreatedAt,
	}
	if !app.PaymentAmount.IsZero() {
		resp.PaymentAmount = app.PaymentAmount.StringFixed(2)
	}
	for _, field := range models.DocumentFields {
		resp.Documents[string(field)] = app.Documents.Get(field)
	}
	return resp
}
