package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/storage"
)

// --- Общие хелперы ---

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isValidPoolStatusTransition(current, next models.PoolStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.PoolStatus][]models.PoolStatus{
		models.StatusSetup:     {models.StatusOpen, models.StatusCanceled},
		models.StatusOpen:      {models.StatusLocked, models.StatusCanceled},
		models.StatusLocked:    {models.StatusCanceled}, // completed достигается только финализацией
		models.StatusCompleted: {},
		models.StatusCanceled:  {},
	}
	for _, allowedNextStatus := range allowedTransitions[current] {
		if next == allowedNextStatus {
			return true
		}
	}
	return false
}

// --- Хелперы для заполнения URL логотипов ---

func populatePoolLogoURLFunc(pool *models.Pool, uploader storage.FileUploader) {
	if pool != nil && pool.LogoKey != nil && *pool.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*pool.LogoKey)
		if url != "" {
			pool.LogoURL = &url
		}
	}
}

func populateTeamLogoURLFunc(team *models.Team, uploader storage.FileUploader) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}

func populateUserDetailsFunc(user *models.User, uploader storage.FileUploader) {
	if user == nil {
		return
	}
	user.PasswordHash = "" // Важно для безопасности
	if user.LogoKey != nil && *user.LogoKey != "" && uploader != nil {
		url := uploader.GetPublicURL(*user.LogoKey)
		if url != "" {
			user.LogoURL = &url
		}
	}
}

// GetExtensionFromContentType подбирает расширение файла по MIME-типу изображения.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			ext := "." + strings.Split(parts[1], "+")[0]
			return ext, nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: '%s'", contentType)
	}
}
