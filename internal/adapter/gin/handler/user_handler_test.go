package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "usuarios-api/internal/domain/user"
	usecase "usuarios-api/internal/usecase/user"
	pkgerrors "usuarios-api/pkg/errors"
)

const testID = "65f1c2a9b1e4c3d2a1b0c9d8"

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*usecase.CreateUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CreateUserResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.GetUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GetUserResponse), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, req usecase.UpdateUserRequest) (*usecase.UpdateUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.UpdateUserResponse), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, req usecase.DeleteUserRequest) (*usecase.DeleteUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.DeleteUserResponse), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context, req usecase.ListUsersRequest) (*usecase.ListUsersResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ListUsersResponse), args.Error(1)
}

func (m *MockUserUsecase) SearchByCity(ctx context.Context, req usecase.SearchByCityRequest) (*usecase.SearchByCityResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SearchByCityResponse), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	h := NewUserHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.POST("/usuarios", h.CreateUser)
	r.GET("/usuarios", h.ListUsers)
	r.GET("/usuarios/buscar", h.SearchByCity)
	r.GET("/usuarios/:id", h.GetUser)
	r.PUT("/usuarios/:id", h.UpdateUser)
	r.DELETE("/usuarios/:id", h.DeleteUser)
	return r, mockUsecase
}

func perform(r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:    testID,
		Name:  "Ana Torres",
		Email: "ana@example.com",
		Addresses: []domain.Address{
			{Street: "Av. Arequipa 123", City: "Lima", Country: "Peru", PostalCode: "15001"},
		},
	}
}

const validBody = `{"name":"Ana Torres","email":"ana@example.com","age":30,
	"addresses":[{"street":"Av. Arequipa 123","city":"Lima","country":"Peru","postal_code":"15001"}]}`

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.MatchedBy(func(req usecase.CreateUserRequest) bool {
			return req.Name == "Ana Torres" && req.Age != nil && *req.Age == 30 && len(req.Addresses) == 1
		})).Return(&usecase.CreateUserResponse{User: sampleUser()}, nil)

		w, resp := perform(r, http.MethodPost, "/usuarios", validBody)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, true, resp["success"])
		data := resp["data"].(map[string]any)
		assert.Equal(t, testID, data["id"])
		assert.NotContains(t, data, "age")
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Validation error list", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError(usecase.MsgNameFieldRequired, usecase.MsgEmailFieldRequired, usecase.MsgAddressesField))

		w, resp := perform(r, http.MethodPost, "/usuarios", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, []any{usecase.MsgNameFieldRequired, usecase.MsgEmailFieldRequired, usecase.MsgAddressesField}, resp["error"])
	})

	t.Run("Empty body is an empty object", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, usecase.CreateUserRequest{}).
			Return(nil, pkgerrors.NewValidationError("x"))

		w, _ := perform(r, http.MethodPost, "/usuarios", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Wrong field type", func(t *testing.T) {
		r, mockUsecase := setupTest(t)

		w, resp := perform(r, http.MethodPost, "/usuarios", `{"name":"Ana","email":"a@b.co","addresses":"Lima"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []any{"field 'addresses' has an invalid type"}, resp["error"])
		mockUsecase.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		r, _ := setupTest(t)

		w, resp := perform(r, http.MethodPost, "/usuarios", `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []any{"invalid JSON payload"}, resp["error"])
	})

	t.Run("Duplicate email", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).Return(nil, pkgerrors.ErrEmailTaken)

		w, resp := perform(r, http.MethodPost, "/usuarios", validBody)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email already registered", resp["error"])
	})

	t.Run("Store failure", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).Return(nil, errors.New("server selection timeout"))

		w, resp := perform(r, http.MethodPost, "/usuarios", validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "server selection timeout", resp["error"])
	})
}

func TestListUsers(t *testing.T) {
	t.Run("Pagination fields", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		users := make([]domain.User, 5)
		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{Page: 2, Limit: 10}).
			Return(&usecase.ListUsersResponse{Users: users, Pagination: domain.NewPagination(15, 2, 10)}, nil)

		w, resp := perform(r, http.MethodGet, "/usuarios?page=2&limit=10", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp["data"], 5)
		assert.Equal(t, 15.0, resp["totalUsuarios"])
		assert.Equal(t, 2.0, resp["totalPaginas"])
		assert.Equal(t, 2.0, resp["paginaActual"])
	})

	t.Run("Malformed parameters fall through as zero", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("ListUsers", mock.Anything, usecase.ListUsersRequest{Page: 0, Limit: 0}).
			Return(&usecase.ListUsersResponse{Users: []domain.User{}, Pagination: domain.NewPagination(0, 1, 10)}, nil)

		w, resp := perform(r, http.MethodGet, "/usuarios?page=abc&limit=x", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []any{}, resp["data"])
		assert.Equal(t, 0.0, resp["totalUsuarios"])
		mockUsecase.AssertExpectations(t)
	})
}

func TestSearchByCity(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("SearchByCity", mock.Anything, usecase.SearchByCityRequest{City: "lima"}).
			Return(&usecase.SearchByCityResponse{Users: []domain.User{*sampleUser()}}, nil)

		w, resp := perform(r, http.MethodGet, "/usuarios/buscar?ciudad=lima", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp["data"], 1)
	})

	t.Run("Route is not captured by :id", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("SearchByCity", mock.Anything, usecase.SearchByCityRequest{City: ""}).
			Return(nil, pkgerrors.NewBadRequestError("ciudad", "you must provide a city to search"))

		w, resp := perform(r, http.MethodGet, "/usuarios/buscar", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "you must provide a city to search", resp["error"])
		mockUsecase.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("No matches", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("SearchByCity", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewNotFoundError("user", "no users found in that city"))

		w, resp := perform(r, http.MethodGet, "/usuarios/buscar?ciudad=Atlantis", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "no users found in that city", resp["error"])
	})
}

func TestGetUser(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  any
	}{
		{name: "Invalid id", err: pkgerrors.ErrInvalidID, wantStatus: http.StatusBadRequest, wantError: "invalid user id"},
		{name: "Not found", err: pkgerrors.ErrUserNotFound, wantStatus: http.StatusNotFound, wantError: "user not found"},
		{name: "Internal", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantError: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mockUsecase := setupTest(t)
			mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: "abc"}).Return(nil, tt.err)

			w, resp := perform(r, http.MethodGet, "/usuarios/abc", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tt.wantError, resp["error"])
		})
	}

	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{ID: testID}).
			Return(&usecase.GetUserResponse{User: sampleUser()}, nil)

		w, resp := perform(r, http.MethodGet, "/usuarios/"+testID, "")

		require.Equal(t, http.StatusOK, w.Code)
		data := resp["data"].(map[string]any)
		assert.Equal(t, "ana@example.com", data["email"])
		assert.Len(t, data["addresses"], 1)
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateUser", mock.Anything, mock.MatchedBy(func(req usecase.UpdateUserRequest) bool {
			return req.ID == testID && req.Email == "ana@example.com"
		})).Return(&usecase.UpdateUserResponse{User: sampleUser()}, nil)

		w, resp := perform(r, http.MethodPut, "/usuarios/"+testID, validBody)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, resp["success"])
	})

	t.Run("Email taken", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).Return(nil, pkgerrors.ErrEmailTaken)

		w, resp := perform(r, http.MethodPut, "/usuarios/"+testID, validBody)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "email already registered", resp["error"])
	})

	t.Run("Not found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).Return(nil, pkgerrors.ErrUserNotFound)

		w, _ := perform(r, http.MethodPut, "/usuarios/"+testID, validBody)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("DeleteUser", mock.Anything, usecase.DeleteUserRequest{ID: testID}).
			Return(&usecase.DeleteUserResponse{ID: testID, Message: "user deleted successfully"}, nil)

		w, resp := perform(r, http.MethodDelete, "/usuarios/"+testID, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, "user deleted successfully", resp["message"])
		assert.NotContains(t, resp, "data")
	})

	t.Run("Not found", func(t *testing.T) {
		r, mockUsecase := setupTest(t)
		mockUsecase.On("DeleteUser", mock.Anything, mock.Anything).Return(nil, pkgerrors.ErrUserNotFound)

		w, resp := perform(r, http.MethodDelete, "/usuarios/"+testID, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "user not found", resp["error"])
	})
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Healthy", func(t *testing.T) {
		r := gin.New()
		r.GET("/health", Health("usuarios-api", map[string]Pinger{"store": fakePinger{}}))

		w, resp := perform(r, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", resp["status"])
	})

	t.Run("Store down", func(t *testing.T) {
		r := gin.New()
		r.GET("/health", Health("usuarios-api", map[string]Pinger{"store": fakePinger{err: errors.New("no reachable servers")}}))

		w, resp := perform(r, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", resp["status"])
	})
}
