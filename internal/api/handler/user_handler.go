package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

// maxFaceImageBytes caps uploaded face images at 8 MiB.
const maxFaceImageBytes = 8 << 20

// UserHandler exposes user management: partial updates by email and face
// image uploads feeding the recognition corpus.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	HasFace  bool   `json:"has_face_image"`
}

// Update handles PUT /v1/users/:email — multipart form with optional
// username/password/role fields and an optional face_image file part.
//
// @Summary      Update a user by email
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        email       path      string  true   "User email"
// @Param        username    formData  string  false  "New username"
// @Param        password    formData  string  false  "New password"
// @Param        role        formData  string  false  "New role"
// @Param        face_image  formData  file    false  "Face image (jpg/png)"
// @Success      200         {object}  userResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/users/{email} [put]
func (h *UserHandler) Update(c echo.Context) error {
	input := ports.UpdateUserInput{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
		Role:     c.FormValue("role"),
	}

	image, err := readFacePart(c)
	if err != nil {
		return err
	}
	input.FaceImage = image

	user, err := h.service.UpdateByEmail(c.Request().Context(), c.Param("email"), input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateFace handles PUT /v1/users/:email/face — replaces only the face image.
//
// @Summary      Upload a user's face image
// @Tags         users
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        email       path      string  true  "User email"
// @Param        face_image  formData  file    true  "Face image (jpg/png)"
// @Success      200         {object}  userResponse
// @Failure      400         {object}  errorResponse
// @Failure      404         {object}  errorResponse
// @Router       /v1/users/{email}/face [put]
func (h *UserHandler) UpdateFace(c echo.Context) error {
	image, err := readFacePart(c)
	if err != nil {
		return err
	}
	if len(image) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "face_image file is required")
	}

	user, err := h.service.UpdateFaceImageByEmail(c.Request().Context(), c.Param("email"), image)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// List handles GET /v1/users.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  userResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, resp)
}

// readFacePart reads the optional face_image multipart file. A missing part
// yields nil bytes, not an error.
func readFacePart(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("face_image")
	if err != nil {
		return nil, nil // part absent
	}
	if fh.Size > maxFaceImageBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "face image too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable face image")
	}
	defer f.Close()

	image, err := io.ReadAll(f)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable face image")
	}
	return image, nil
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		HasFace:  u.HasFaceImage(),
	}
}
