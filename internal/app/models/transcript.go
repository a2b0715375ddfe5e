package models

// TranscriptLine carries one approved internship as it appears on the
// marksheet, with approver identities resolved to display names.
type TranscriptLine struct {
	CompanyName   string `json:"companyName"`
	RoleTitle     string `json:"roleTitle"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	DurationWeeks int    `json:"durationWeeks"`
	Credits       int    `json:"credits"`
	TeacherName   string `json:"teacherName"`
	AdminName     string `json:"adminName"`
}

// TranscriptStudent identifies the student the transcript belongs to.
type TranscriptStudent struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Transcript is the derived, read-only aggregation of a student's approved
// internships. It is computed fresh on each request and never persisted.
type Transcript struct {
	Student      TranscriptStudent `json:"student"`
	LineItems    []TranscriptLine  `json:"lineItems"`
	TotalCredits int               `json:"totalCredits"`
}
