package service

import (
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/repository"
)

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetProfile(userID string) (*model.User, error) {
	return s.userRepo.FindByID(userID)
}

func (s *UserService) UpdateProfile(userID, name, language string) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if language != "" {
		user.Language = language
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdateAvatar(userID, url string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	user.Avatar = url
	return s.userRepo.Update(user)
}
