package apiv1

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mwm/pkg/api"
)

// DefaultPostLimit is used when the limit query parameter is absent.
const DefaultPostLimit = 10

type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PostWithAuthor struct {
	Author Author `json:"author"`
	Post
}

type UpdatedPost struct {
	Post
	Updated bool `json:"updated"`
}

type ListPostsInput struct {
	Limit *int `query:"limit" json:"-" validate:"omitempty,gte=0,lte=100"`
}

type PostIDInput struct {
	ID string `path:"id" json:"-"`
}

type CreatePostInput struct {
	Title   string `json:"title" sanitize:"strip,singleline" validate:"required,max=200"`
	Content string `json:"content" sanitize:"trim" validate:"required"`
}

type UpdatePostInput struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Content *string `json:"content,omitempty"`
	ID      string  `path:"id" json:"-"`
}

func registerPosts(a *api.API) {
	api.Get(a, "/posts", listPosts,
		api.Summary("List posts"), api.Tags("posts"), api.OperationID("post.list"))
	api.Get(a, "/posts/{id}", getPost,
		api.Summary("Get a post with its author"), api.Tags("posts"), api.OperationID("post.get"))
	api.Post(a, "/posts", createPost,
		api.Summary("Create a post"), api.Tags("posts"), api.OperationID("post.create"))
	api.Put(a, "/posts/{id}", updatePost,
		api.Summary("Update a post"), api.Tags("posts"), api.OperationID("post.update"))
	api.Delete(a, "/posts/{id}", deletePost,
		api.Summary("Delete a post"), api.Tags("posts"), api.OperationID("post.delete"))
}

func listPosts(_ context.Context, in ListPostsInput) ([]Post, error) {
	limit := DefaultPostLimit
	if in.Limit != nil {
		limit = *in.Limit
	}
	posts := make([]Post, limit)
	for i := range posts {
		n := strconv.Itoa(i + 1)
		posts[i] = Post{ID: n, Title: "Post " + n, Content: "Content for post " + n}
	}
	return posts, nil
}

func getPost(_ context.Context, in PostIDInput) (PostWithAuthor, error) {
	return PostWithAuthor{
		Post:   Post{ID: in.ID, Title: "Post " + in.ID, Content: "Full content for post " + in.ID},
		Author: Author{ID: "1", Name: "Alice"},
	}, nil
}

func createPost(_ context.Context, in CreatePostInput) (Post, error) {
	return Post{ID: uuid.NewString(), Title: in.Title, Content: in.Content}, nil
}

func updatePost(_ context.Context, in UpdatePostInput) (UpdatedPost, error) {
	p := Post{ID: in.ID, Title: "Post " + in.ID, Content: "Content for post " + in.ID}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	return UpdatedPost{Post: p, Updated: true}, nil
}

func deletePost(_ context.Context, in PostIDInput) (Deleted, error) {
	return Deleted{ID: in.ID, Deleted: true}, nil
}
