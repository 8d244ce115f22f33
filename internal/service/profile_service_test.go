package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mentorlink/mentorlink-api/internal/dto"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/repository"
)

type fakeStorage struct {
	uploads int
	lastURL string
}

func (f *fakeStorage) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	f.uploads++
	f.lastURL = "https://cdn.example.com/" + name
	return f.lastURL, nil
}

func newProfileService(db *gorm.DB, storage AvatarStorage) ProfileService {
	return NewProfileService(
		repository.NewUserRepository(db),
		repository.NewLearningSkillRepository(db),
		storage,
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		5,
		zerolog.Nop(),
	)
}

func multipartImage(t *testing.T, field string) *multipart.FileHeader {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var payload bytes.Buffer
	require.NoError(t, png.Encode(&payload, img))

	return multipartFile(t, field, "avatar.png", payload.Bytes())
}

func multipartFile(t *testing.T, field, name string, payload []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	return req.MultipartForm.File[field][0]
}

func TestProfileServiceUpdateProfile(t *testing.T) {
	db := openServiceDB(t)
	mentee, _ := seedPair(t, db)
	svc := newProfileService(db, &fakeStorage{})

	updated, err := svc.UpdateProfile(context.Background(), mentee.ID, dto.ProfileUpdateRequest{
		Skills:       []string{" Go ", "Docker", ""},
		Availability: []string{"Monday"},
		Department:   "Computer Science",
		Bio:          "Learning Go",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Go", "Docker"}, updated.Skills)
	require.Equal(t, []string{"Monday"}, updated.Availability)
	require.Equal(t, "Computer Science", updated.Department)
	require.Equal(t, "Learning Go", updated.Bio)

	_, err = svc.UpdateProfile(context.Background(), "ghost", dto.ProfileUpdateRequest{
		Skills:       []string{"Go"},
		Availability: []string{"Monday"},
	})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileServiceGetUserHidesPassword(t *testing.T) {
	db := openServiceDB(t)
	user := models.User{ID: "u-1", Name: "Pat", Email: "pat@example.com", Role: models.RoleMentee, PasswordHash: "hash"}
	require.NoError(t, db.Create(&user).Error)

	svc := newProfileService(db, &fakeStorage{})
	fetched, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "Pat", fetched.Name)

	_, err = svc.GetUser(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileServiceUploadAvatar(t *testing.T) {
	db := openServiceDB(t)
	mentee, _ := seedPair(t, db)
	storage := &fakeStorage{}
	svc := newProfileService(db, storage)

	updated, err := svc.UploadAvatar(context.Background(), mentee.ID, multipartImage(t, "avatar"))
	require.NoError(t, err)
	require.Equal(t, storage.lastURL, updated.Avatar)
	require.Equal(t, 1, storage.uploads)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", mentee.ID).Error)
	require.Equal(t, storage.lastURL, user.Avatar)
}

func TestProfileServiceUploadAvatarRejectsNonImage(t *testing.T) {
	db := openServiceDB(t)
	mentee, _ := seedPair(t, db)
	storage := &fakeStorage{}
	svc := newProfileService(db, storage)

	file := multipartFile(t, "avatar", "notes.txt", []byte("plain text, not an image"))
	_, err := svc.UploadAvatar(context.Background(), mentee.ID, file)
	require.ErrorIs(t, err, ErrAvatarTypeNotAllowed)
	require.Zero(t, storage.uploads)
}

func TestProfileServiceLearningSkills(t *testing.T) {
	db := openServiceDB(t)
	mentee, mentor := seedPair(t, db)
	svc := newProfileService(db, &fakeStorage{})
	ctx := context.Background()

	created, err := svc.AddLearningSkill(ctx, dto.LearningSkillCreateRequest{
		MenteeID:  mentee.ID,
		SkillName: "  Go  ",
	})
	require.NoError(t, err)
	require.Equal(t, "Go", created.SkillName)
	require.Equal(t, models.SkillPriorityMedium, created.Priority, "priority defaults to Medium")

	_, err = svc.AddLearningSkill(ctx, dto.LearningSkillCreateRequest{
		MenteeID:  mentee.ID,
		SkillName: "Go, Docker",
	})
	require.ErrorIs(t, err, ErrSkillHasComma)

	_, err = svc.AddLearningSkill(ctx, dto.LearningSkillCreateRequest{
		MenteeID:  mentor.ID,
		SkillName: "Go",
	})
	require.ErrorIs(t, err, ErrMenteeNotFound, "mentors cannot have learning skills")

	listed, err := svc.ListLearningSkills(ctx, mentee.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, svc.RemoveLearningSkill(ctx, created.ID))
	require.ErrorIs(t, svc.RemoveLearningSkill(ctx, created.ID), ErrLearningSkillNotFound)
}
