package services

// Services holds all the service instances
type Services struct {
	InternshipService InternshipService
	MarksheetService  MarksheetService
}
