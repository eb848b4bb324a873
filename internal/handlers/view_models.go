package handlers

import (
	"testdash/internal/models"
	"testdash/internal/service"
)

type LoadingViewData struct {
	Title string
}

type LoginViewData struct {
	Title   string
	Error   string
	Email   string
	Success string
}

type RegisterViewData struct {
	Title     string
	Error     string
	Email     string
	FirstName string
	LastName  string
}

type StudentDashboardViewData struct {
	Title   string
	User    *models.User
	Tests   []models.Test
	Stats   *models.StudentStats
	History []models.AttemptRecord
	Success string
	Error   string
}

type TeacherDashboardViewData struct {
	Title   string
	User    *models.User
	Tests   []models.Test
	Form    models.NewTest
	Success string
	Error   string
}

type AttemptViewData struct {
	Title   string
	User    *models.User
	Attempt *service.AttemptView
	Error   string
}

type UnavailableViewData struct {
	Title string
	User  *models.User
}
