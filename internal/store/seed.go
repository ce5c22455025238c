package store

import "github.com/noah-isme/emphasis-lines-api/internal/models"

// SeedPassword is the password of every seeded account.
const SeedPassword = "123"

// Seed user ids. The coordinator id is also the default request notification target.
const (
	SeedStudentID     = 1
	SeedProfessorID   = 2
	SeedCoordinatorID = 3
)

// SeedUsers returns the three accounts synthesized when the user collection is empty.
func SeedUsers() []models.User {
	return []models.User{
		{
			ID:         SeedStudentID,
			Code:       "EST001",
			Name:       "Juan Pérez Estudiante",
			Email:      "estudiante@udem.edu.co",
			Password:   SeedPassword,
			Role:       models.RoleStudent,
			NationalID: "1001234567",
			Phone:      "3001234567",
			Program:    "Ingeniería de Sistemas",
			Term:       7,
			Average:    4.2,
			Status:     models.StatusActive,
		},
		{
			ID:         SeedProfessorID,
			Code:       "PROF001",
			Name:       "Dr. Juan Martínez Profesor",
			Email:      "profesor@udem.edu.co",
			Password:   SeedPassword,
			Role:       models.RoleProfessor,
			NationalID: "8001234567",
			Status:     models.StatusActive,
		},
		{
			ID:         SeedCoordinatorID,
			Code:       "COORD001",
			Name:       "Ing. Carlos López Coordinador",
			Email:      "coordinador@udem.edu.co",
			Password:   SeedPassword,
			Role:       models.RoleCoordinator,
			NationalID: "7001234567",
			Status:     models.StatusActive,
		},
	}
}
