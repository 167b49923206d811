package handler

import (
	"time"

	"github.com/gesa962/Campus-Connect/internal/domain"
)

// UserDTO is the JSON representation of a user. The password hash is never
// serialized.
type UserDTO struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role"`
	StudentID  string `json:"studentId,omitempty"`
	Department string `json:"department,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       string(u.Role),
		StudentID:  u.StudentID,
		Department: u.Department,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.Format(time.RFC3339),
	}
}

func toUserDTOs(users []domain.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	return dtos
}

// EventDTO is the JSON representation of an event.
type EventDTO struct {
	ID                   int64   `json:"id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Location             string  `json:"location"`
	EventDateTime        string  `json:"eventDateTime"`
	RegistrationDeadline string  `json:"registrationDeadline"`
	MaxParticipants      int     `json:"maxParticipants"`
	Category             string  `json:"category"`
	Organizer            string  `json:"organizer"`
	CreatedByID          int64   `json:"createdById"`
	IsActive             bool    `json:"isActive"`
	ParticipantIDs       []int64 `json:"participantIds"`
	CurrentParticipants  int     `json:"currentParticipants"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
}

func toEventDTO(e *domain.Event) EventDTO {
	participants := e.Participants
	if participants == nil {
		participants = []int64{}
	}
	return EventDTO{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		Location:             e.Location,
		EventDateTime:        e.EventDateTime.Format(time.RFC3339),
		RegistrationDeadline: e.RegistrationDeadline.Format(time.RFC3339),
		MaxParticipants:      e.MaxParticipants,
		Category:             e.Category,
		Organizer:            e.Organizer,
		CreatedByID:          e.CreatedByID,
		IsActive:             e.IsActive,
		ParticipantIDs:       participants,
		CurrentParticipants:  len(participants),
		CreatedAt:            e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            e.UpdatedAt.Format(time.RFC3339),
	}
}

func toEventDTOs(events []domain.Event) []EventDTO {
	dtos := make([]EventDTO, len(events))
	for i := range events {
		dtos[i] = toEventDTO(&events[i])
	}
	return dtos
}
