package apiv1

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mwm/pkg/api"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email" jsonschema:"format=email"`
}

type UserIDInput struct {
	ID string `path:"id" json:"-"`
}

type CreateUserInput struct {
	Name  string `json:"name" sanitize:"strip,singleline" validate:"required,max=100"`
	Email string `json:"email" sanitize:"email" validate:"required,email"`
}

// Deleted answers a DELETE.
type Deleted struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func registerUsers(a *api.API) {
	api.Get(a, "/users", listUsers,
		api.Summary("List users"), api.Tags("users"), api.OperationID("user.list"))
	api.Get(a, "/users/{id}", getUser,
		api.Summary("Get a user"), api.Tags("users"), api.OperationID("user.get"))
	api.Post(a, "/users", createUser,
		api.Summary("Create a user"), api.Tags("users"), api.OperationID("user.create"))
	api.Delete(a, "/users/{id}", deleteUser,
		api.Summary("Delete a user"), api.Tags("users"), api.OperationID("user.delete"))
}

func listUsers(context.Context, struct{}) ([]User, error) {
	return []User{
		{ID: "1", Name: "Alice", Email: "alice@example.com"},
		{ID: "2", Name: "Bob", Email: "bob@example.com"},
		{ID: "3", Name: "Charlie", Email: "charlie@example.com"},
	}, nil
}

func getUser(_ context.Context, in UserIDInput) (User, error) {
	return User{ID: in.ID, Name: "User " + in.ID, Email: "user" + in.ID + "@example.com"}, nil
}

func createUser(_ context.Context, in CreateUserInput) (User, error) {
	return User{ID: uuid.NewString(), Name: in.Name, Email: in.Email}, nil
}

func deleteUser(_ context.Context, in UserIDInput) (Deleted, error) {
	return Deleted{ID: in.ID, Deleted: true}, nil
}
