package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/mypark/parkwallet/internal/adapters/http/middleware"
	"github.com/mypark/parkwallet/internal/application/dtos"
	domerrors "github.com/mypark/parkwallet/internal/domain/errors"
)

// ============================================
// Mock Use Cases
// ============================================

type mockGetUserUseCase struct {
	ExecuteFn func(ctx context.Context, query dtos.GetUserQuery) (*dtos.UserDTO, error)
}

func (m *mockGetUserUseCase) Execute(ctx context.Context, query dtos.GetUserQuery) (*dtos.UserDTO, error) {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, query)
	}
	return nil, nil
}

type mockListUsersUseCase struct {
	ExecuteFn func(ctx context.Context, query dtos.ListUsersQuery) (*dtos.UserListDTO, error)
}

func (m *mockListUsersUseCase) Execute(ctx context.Context, query dtos.ListUsersQuery) (*dtos.UserListDTO, error) {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, query)
	}
	return nil, nil
}

type mockUpdateProfileUseCase struct {
	ExecuteFn func(ctx context.Context, cmd dtos.UpdateProfileCommand) (*dtos.UserDTO, error)
}

func (m *mockUpdateProfileUseCase) Execute(ctx context.Context, cmd dtos.UpdateProfileCommand) (*dtos.UserDTO, error) {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, cmd)
	}
	return nil, nil
}

type mockAssignRoleUseCase struct {
	ExecuteFn func(ctx context.Context, cmd dtos.AssignRoleCommand) (*dtos.UserDTO, error)
}

func (m *mockAssignRoleUseCase) Execute(ctx context.Context, cmd dtos.AssignRoleCommand) (*dtos.UserDTO, error) {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, cmd)
	}
	return nil, nil
}

type mockSetDefaultVehicleUseCase struct {
	ExecuteFn func(ctx context.Context, cmd dtos.SetDefaultVehicleCommand) (*dtos.UserDTO, error)
}

func (m *mockSetDefaultVehicleUseCase) Execute(ctx context.Context, cmd dtos.SetDefaultVehicleCommand) (*dtos.UserDTO, error) {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, cmd)
	}
	return nil, nil
}

// ============================================
// Helper Functions
// ============================================

// setupUserTestRouter injects the given user and role the way the auth
// middleware would, so RequireRole on the admin group is exercised.
func setupUserTestRouter(handler *UserHandler, userID, role string) *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.AuthUserIDKey, userID)
		c.Set(middleware.AuthUserRoleKey, role)
		c.Next()
	})
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func sampleUserDTO(id, role string) dtos.UserDTO {
	return dtos.UserDTO{
		ID:            id,
		Name:          "Aina Binti Rashid",
		Email:         "aina@example.my",
		Phone:         "+60123456789",
		Role:          role,
		WalletBalance: "25.50",
		CreatedAt:     time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

// ============================================
// Test Cases
// ============================================

func TestNewUserHandler(t *testing.T) {
	handler := NewUserHandler(nil, nil, nil, nil, nil)
	assert.NotNil(t, handler)
}

func TestUserHandler_GetMe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		userID := uuid.New().String()

		mockUseCase := &mockGetUserUseCase{
			ExecuteFn: func(ctx context.Context, query dtos.GetUserQuery) (*dtos.UserDTO, error) {
				assert.Equal(t, userID, query.UserID)
				user := sampleUserDTO(userID, "user")
				return &user, nil
			},
		}

		handler := NewUserHandler(mockUseCase, nil, nil, nil, nil)
		router := setupUserTestRouter(handler, userID, "user")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, userID, data["id"])
		assert.Equal(t, "25.50", data["wallet_balance"])
	})

	t.Run("NotFound", func(t *testing.T) {
		mockUseCase := &mockGetUserUseCase{
			ExecuteFn: func(ctx context.Context, query dtos.GetUserQuery) (*dtos.UserDTO, error) {
				return nil, domerrors.ErrUserNotFound
			},
		}

		handler := NewUserHandler(mockUseCase, nil, nil, nil, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "user")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUserHandler_UpdateMe(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		userID := uuid.New().String()

		mockUseCase := &mockUpdateProfileUseCase{
			ExecuteFn: func(ctx context.Context, cmd dtos.UpdateProfileCommand) (*dtos.UserDTO, error) {
				assert.Equal(t, userID, cmd.UserID)
				assert.Equal(t, "Nur Aina", cmd.Name)
				assert.Equal(t, "+60198765432", cmd.Phone)
				user := sampleUserDTO(userID, "user")
				user.Name = cmd.Name
				user.Phone = cmd.Phone
				return &user, nil
			},
		}

		handler := NewUserHandler(nil, nil, mockUseCase, nil, nil)
		router := setupUserTestRouter(handler, userID, "user")

		body, _ := json.Marshal(UpdateProfileRequest{
			Name:  "Nur Aina",
			Phone: "+60198765432",
		})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "Nur Aina", data["name"])
	})

	t.Run("InvalidPhone", func(t *testing.T) {
		handler := NewUserHandler(nil, nil, &mockUpdateProfileUseCase{}, nil, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "user")

		body, _ := json.Marshal(UpdateProfileRequest{
			Name:  "Nur Aina",
			Phone: "0123456789", // missing +country prefix
		})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("NameTooShort", func(t *testing.T) {
		handler := NewUserHandler(nil, nil, &mockUpdateProfileUseCase{}, nil, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "user")

		body, _ := json.Marshal(UpdateProfileRequest{
			Name:  "A",
			Phone: "+60123456789",
		})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_SetDefaultVehicle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		userID := uuid.New().String()
		vehicleID := uuid.New().String()

		mockUseCase := &mockSetDefaultVehicleUseCase{
			ExecuteFn: func(ctx context.Context, cmd dtos.SetDefaultVehicleCommand) (*dtos.UserDTO, error) {
				assert.Equal(t, userID, cmd.UserID)
				assert.Equal(t, vehicleID, cmd.VehicleID)
				user := sampleUserDTO(userID, "user")
				user.DefaultVehicleID = &vehicleID
				return &user, nil
			},
		}

		handler := NewUserHandler(nil, nil, nil, nil, mockUseCase)
		router := setupUserTestRouter(handler, userID, "user")

		body, _ := json.Marshal(SetDefaultVehicleRequest{VehicleID: vehicleID})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me/default-vehicle", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, vehicleID, data["default_vehicle_id"])
	})

	t.Run("VehicleNotOwned", func(t *testing.T) {
		mockUseCase := &mockSetDefaultVehicleUseCase{
			ExecuteFn: func(ctx context.Context, cmd dtos.SetDefaultVehicleCommand) (*dtos.UserDTO, error) {
				return nil, domerrors.ErrNotAuthorized
			},
		}

		handler := NewUserHandler(nil, nil, nil, nil, mockUseCase)
		router := setupUserTestRouter(handler, uuid.New().String(), "user")

		body, _ := json.Marshal(SetDefaultVehicleRequest{VehicleID: uuid.New().String()})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me/default-vehicle", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("InvalidVehicleID", func(t *testing.T) {
		handler := NewUserHandler(nil, nil, nil, nil, &mockSetDefaultVehicleUseCase{})
		router := setupUserTestRouter(handler, uuid.New().String(), "user")

		body, _ := json.Marshal(SetDefaultVehicleRequest{VehicleID: "not-a-uuid"})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/users/me/default-vehicle", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_ListUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success_AsAdmin", func(t *testing.T) {
		mockUseCase := &mockListUsersUseCase{
			ExecuteFn: func(ctx context.Context, query dtos.ListUsersQuery) (*dtos.UserListDTO, error) {
				assert.Equal(t, 0, query.Offset)
				assert.Equal(t, 20, query.Limit)
				return &dtos.UserListDTO{
					Users: []dtos.UserDTO{
						sampleUserDTO(uuid.New().String(), "user"),
						sampleUserDTO(uuid.New().String(), "traffic_warden"),
					},
					Offset: 0,
					Limit:  20,
				}, nil
			},
		}

		handler := NewUserHandler(nil, mockUseCase, nil, nil, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "admin")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		users := data["users"].([]interface{})
		assert.Len(t, users, 2)
	})

	t.Run("Pagination", func(t *testing.T) {
		mockUseCase := &mockListUsersUseCase{
			ExecuteFn: func(ctx context.Context, query dtos.ListUsersQuery) (*dtos.UserListDTO, error) {
				assert.Equal(t, 20, query.Offset)
				assert.Equal(t, 10, query.Limit)
				return &dtos.UserListDTO{Users: []dtos.UserDTO{}, Offset: 20, Limit: 10}, nil
			},
		}

		handler := NewUserHandler(nil, mockUseCase, nil, nil, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "admin")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users?page=3&per_page=10", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Forbidden_AsRegularUser", func(t *testing.T) {
		handler := NewUserHandler(nil, &mockListUsersUseCase{}, nil, nil, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "user")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUserHandler_GetUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success_AsAdmin", func(t *testing.T) {
		targetID := uuid.New().String()

		mockUseCase := &mockGetUserUseCase{
			ExecuteFn: func(ctx context.Context, query dtos.GetUserQuery) (*dtos.UserDTO, error) {
				assert.Equal(t, targetID, query.UserID)
				user := sampleUserDTO(targetID, "user")
				return &user, nil
			},
		}

		handler := NewUserHandler(mockUseCase, nil, nil, nil, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "admin")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+targetID, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		handler := NewUserHandler(&mockGetUserUseCase{}, nil, nil, nil, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "admin")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/not-a-uuid", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Forbidden_AsRegularUser", func(t *testing.T) {
		handler := NewUserHandler(&mockGetUserUseCase{}, nil, nil, nil, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "user")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/"+uuid.New().String(), nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUserHandler_AssignRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Success_AsAdmin", func(t *testing.T) {
		adminID := uuid.New().String()
		targetID := uuid.New().String()

		mockUseCase := &mockAssignRoleUseCase{
			ExecuteFn: func(ctx context.Context, cmd dtos.AssignRoleCommand) (*dtos.UserDTO, error) {
				assert.Equal(t, adminID, cmd.ActorID)
				assert.Equal(t, targetID, cmd.UserID)
				assert.Equal(t, "traffic_warden", cmd.Role)
				user := sampleUserDTO(targetID, "traffic_warden")
				return &user, nil
			},
		}

		handler := NewUserHandler(nil, nil, nil, mockUseCase, nil)
		router := setupUserTestRouter(handler, adminID, "admin")

		body, _ := json.Marshal(AssignRoleRequest{Role: "traffic_warden"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/"+targetID+"/role", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &response)
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "traffic_warden", data["role"])
	})

	t.Run("UnknownRole", func(t *testing.T) {
		handler := NewUserHandler(nil, nil, nil, &mockAssignRoleUseCase{}, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "admin")

		body, _ := json.Marshal(AssignRoleRequest{Role: "superuser"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/"+uuid.New().String()+"/role", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Forbidden_AsWarden", func(t *testing.T) {
		handler := NewUserHandler(nil, nil, nil, &mockAssignRoleUseCase{}, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "traffic_warden")

		body, _ := json.Marshal(AssignRoleRequest{Role: "admin"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/"+uuid.New().String()+"/role", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("TargetNotFound", func(t *testing.T) {
		mockUseCase := &mockAssignRoleUseCase{
			ExecuteFn: func(ctx context.Context, cmd dtos.AssignRoleCommand) (*dtos.UserDTO, error) {
				return nil, domerrors.ErrUserNotFound
			},
		}

		handler := NewUserHandler(nil, nil, nil, mockUseCase, nil)
		router := setupUserTestRouter(handler, uuid.New().String(), "admin")

		body, _ := json.Marshal(AssignRoleRequest{Role: "admin"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/"+uuid.New().String()+"/role", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
