package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/senyabanana/common-elements/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createPost(t *testing.T, author models.Actor, categoryId, title string) *models.ForumPost {
	t.Helper()
	post, err := f.forum.CreatePost(context.Background(), author, models.PostRequest{
		Title:      title,
		Content:    "Looking for recommendations from other boards in the area.",
		CategoryID: categoryId,
	})
	require.NoError(t, err)
	return post
}

func (f *fixture) createComment(t *testing.T, author models.Actor, postId string, parentId *string) *models.ForumComment {
	t.Helper()
	comment, err := f.forum.CreateComment(context.Background(), author, postId, models.CommentRequest{
		Content:         "We used a local crew last year.",
		ParentCommentID: parentId,
	})
	require.NoError(t, err)
	return comment
}

func TestForumService_GetCategories(t *testing.T) {
	f := setup(t)
	f.store.AddForumCategory("Vendor Recommendations", "vendor-recommendations", 2)
	f.store.AddForumCategory("General Discussion", "general", 1)

	categories, err := f.forum.GetCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "general", categories[0].Slug)
	assert.Equal(t, "vendor-recommendations", categories[1].Slug)
}

func TestForumService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("valid post", func(t *testing.T) {
		f := setup(t)
		category := f.store.AddForumCategory("General Discussion", "general", 1)

		post := f.createPost(t, f.vendor, category.ID, "Best season for roof work?")
		assert.Equal(t, f.vendor.UserID, post.Author.ID)
		assert.Equal(t, "Acme Roofing Owner", post.Author.FullName)
		assert.Equal(t, models.Vendor, post.Author.AccountType)
		assert.Equal(t, "general", post.Category.Slug)
		assert.Zero(t, post.VoteCount)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := setup(t)
		_, err := f.forum.CreatePost(ctx, f.creator, models.PostRequest{
			Title:      "Best season for roof work?",
			Content:    "Looking for recommendations from other boards.",
			CategoryID: "00000000-0000-0000-0000-000000000000",
		})
		requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "Invalid category")
	})

	t.Run("field validation", func(t *testing.T) {
		f := setup(t)
		_, err := f.forum.CreatePost(ctx, f.creator, models.PostRequest{Title: "Short", Content: "Too short", CategoryID: "nope"})
		errResp := requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "Please check your input and try again.")
		fields := []string{}
		for _, issue := range errResp.Issues {
			fields = append(fields, issue.Field)
		}
		assert.ElementsMatch(t, []string{"title", "content", "categoryId"}, fields)
	})

	t.Run("requires a user", func(t *testing.T) {
		f := setup(t)
		_, err := f.forum.CreatePost(ctx, models.Actor{}, models.PostRequest{})
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestForumService_UpdatePost(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	category := f.store.AddForumCategory("General Discussion", "general", 1)
	other := f.store.AddForumCategory("Governance & Budgets", "governance", 2)
	post := f.createPost(t, f.creator, category.ID, "Reserve study vendors?")

	_, err := f.forum.UpdatePost(ctx, f.creator, post.ID, models.PostUpdate{})
	requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "No changes to update")

	_, err = f.forum.UpdatePost(ctx, f.neighbor, post.ID, models.PostUpdate{Title: strPtr("Someone else's title")})
	requireErrorResponse(t, err, http.StatusForbidden, models.AuthorizationError, "You can only edit your own posts")

	_, err = f.forum.UpdatePost(ctx, f.creator, "00000000-0000-0000-0000-000000000000", models.PostUpdate{Title: strPtr("Reserve study vendors")})
	requireErrorResponse(t, err, http.StatusNotFound, models.ValidationError, "Post not found")

	_, err = f.forum.UpdatePost(ctx, f.creator, post.ID, models.PostUpdate{Title: strPtr("")})
	requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "")

	updated, err := f.forum.UpdatePost(ctx, f.creator, post.ID, models.PostUpdate{
		Title:      strPtr("Reserve study vendors in 2025"),
		CategoryID: &other.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Reserve study vendors in 2025", updated.Title)
	assert.Equal(t, post.Content, updated.Content)
	assert.Equal(t, "governance", updated.Category.Slug)
}

func TestForumService_GetPosts(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	general := f.store.AddForumCategory("General Discussion", "general", 1)
	maintenance := f.store.AddForumCategory("Maintenance & Repairs", "maintenance", 2)

	first := f.createPost(t, f.creator, general.ID, "First post in general")
	second := f.createPost(t, f.neighbor, general.ID, "Second post in general")
	third := f.createPost(t, f.vendor, maintenance.ID, "Gutter cleaning schedule")
	_, err := f.forum.Vote(ctx, f.neighbor, models.PostVotable, first.ID, models.UpVote)
	require.NoError(t, err)
	f.createComment(t, f.creator, third.ID, nil)

	list, err := f.forum.GetPosts(ctx, models.PostFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	assert.Equal(t, third.ID, list.Posts[0].ID)

	list, err = f.forum.GetPosts(ctx, models.PostFilter{OrderBy: models.OrderByVoteCount, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Posts, 1)
	assert.Equal(t, first.ID, list.Posts[0].ID)

	list, err = f.forum.GetPosts(ctx, models.PostFilter{OrderBy: models.OrderByCommentCount, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, third.ID, list.Posts[0].ID)

	list, err = f.forum.GetPosts(ctx, models.PostFilter{CategoryID: general.ID, Ascending: true, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, []string{first.ID, second.ID}, []string{list.Posts[0].ID, list.Posts[1].ID})

	list, err = f.forum.GetPosts(ctx, models.PostFilter{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, list.Posts)
	assert.Equal(t, 3, list.Total)

	_, err = f.forum.GetPosts(ctx, models.PostFilter{OrderBy: "title"})
	requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "unsupported orderBy: title")
}

func TestForumService_GetPostCountsViews(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	category := f.store.AddForumCategory("General Discussion", "general", 1)
	post := f.createPost(t, f.creator, category.ID, "Snow removal contracts")

	_, err := f.forum.GetPost(ctx, post.ID)
	require.NoError(t, err)
	viewed, err := f.forum.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, viewed.ViewCount)

	_, err = f.forum.GetPost(ctx, "00000000-0000-0000-0000-000000000000")
	requireErrorResponse(t, err, http.StatusNotFound, models.ValidationError, "Post not found")
}

func TestForumService_Comments(t *testing.T) {
	ctx := context.Background()

	t.Run("threads replies one level deep", func(t *testing.T) {
		f := setup(t)
		category := f.store.AddForumCategory("General Discussion", "general", 1)
		post := f.createPost(t, f.creator, category.ID, "Pool opening checklist")

		root := f.createComment(t, f.vendor, post.ID, nil)
		reply := f.createComment(t, f.neighbor, post.ID, &root.ID)
		nested := f.createComment(t, f.creator, post.ID, &reply.ID)
		second := f.createComment(t, f.otherVendor, post.ID, nil)

		require.NotNil(t, nested.ParentCommentID)
		assert.Equal(t, root.ID, *nested.ParentCommentID)

		threads, err := f.forum.GetComments(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, threads, 2)
		assert.Equal(t, root.ID, threads[0].ID)
		assert.Equal(t, second.ID, threads[1].ID)
		require.Len(t, threads[0].Replies, 2)
		assert.Equal(t, reply.ID, threads[0].Replies[0].ID)
		assert.Equal(t, nested.ID, threads[0].Replies[1].ID)
		assert.Empty(t, threads[1].Replies)

		stored, err := f.forum.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, stored.CommentCount)
	})

	t.Run("content is trimmed and required", func(t *testing.T) {
		f := setup(t)
		category := f.store.AddForumCategory("General Discussion", "general", 1)
		post := f.createPost(t, f.creator, category.ID, "Pool opening checklist")

		comment, err := f.forum.CreateComment(ctx, f.vendor, post.ID, models.CommentRequest{Content: "\n  Happy to help.  \t"})
		require.NoError(t, err)
		assert.Equal(t, "Happy to help.", comment.Content)

		_, err = f.forum.CreateComment(ctx, f.vendor, post.ID, models.CommentRequest{Content: "   "})
		requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "Comment content is required")

		_, err = f.forum.CreateComment(ctx, f.vendor, post.ID, models.CommentRequest{Content: strings.Repeat("x", 5001)})
		requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "Please check your input and try again.")
	})

	t.Run("parent must belong to the post", func(t *testing.T) {
		f := setup(t)
		category := f.store.AddForumCategory("General Discussion", "general", 1)
		post := f.createPost(t, f.creator, category.ID, "Pool opening checklist")
		otherPost := f.createPost(t, f.creator, category.ID, "Elevator inspection vendors")
		foreign := f.createComment(t, f.vendor, otherPost.ID, nil)

		_, err := f.forum.CreateComment(ctx, f.vendor, post.ID, models.CommentRequest{Content: "Reply", ParentCommentID: &foreign.ID})
		requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "Invalid parent comment")

		_, err = f.forum.CreateComment(ctx, f.vendor, "00000000-0000-0000-0000-000000000000", models.CommentRequest{Content: "Hello"})
		requireErrorResponse(t, err, http.StatusNotFound, models.ValidationError, "Post not found")
	})

	t.Run("notifies the post and parent authors", func(t *testing.T) {
		f := setup(t)
		category := f.store.AddForumCategory("General Discussion", "general", 1)
		post := f.createPost(t, f.creator, category.ID, "Pool opening checklist")

		f.createComment(t, f.creator, post.ID, nil)
		assert.Zero(t, f.notifier.eventsFor(f.creator.UserID, models.ForumCommentEvent))

		root := f.createComment(t, f.vendor, post.ID, nil)
		assert.Equal(t, 1, f.notifier.eventsFor(f.creator.UserID, models.ForumCommentEvent))

		f.createComment(t, f.neighbor, post.ID, &root.ID)
		assert.Equal(t, 2, f.notifier.eventsFor(f.creator.UserID, models.ForumCommentEvent))
		assert.Equal(t, 1, f.notifier.eventsFor(f.vendor.UserID, models.ForumCommentEvent))
	})

	t.Run("only the author edits a comment", func(t *testing.T) {
		f := setup(t)
		category := f.store.AddForumCategory("General Discussion", "general", 1)
		post := f.createPost(t, f.creator, category.ID, "Pool opening checklist")
		comment := f.createComment(t, f.vendor, post.ID, nil)

		_, err := f.forum.UpdateComment(ctx, f.otherVendor, comment.ID, models.CommentUpdate{Content: "Edited"})
		requireErrorResponse(t, err, http.StatusForbidden, models.AuthorizationError, "You can only edit your own comments")

		_, err = f.forum.UpdateComment(ctx, f.vendor, comment.ID, models.CommentUpdate{Content: "  "})
		requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "Comment content is required")

		_, err = f.forum.UpdateComment(ctx, f.vendor, "00000000-0000-0000-0000-000000000000", models.CommentUpdate{Content: "Edited"})
		requireErrorResponse(t, err, http.StatusNotFound, models.ValidationError, "Comment not found")

		updated, err := f.forum.UpdateComment(ctx, f.vendor, comment.ID, models.CommentUpdate{Content: " Edited "})
		require.NoError(t, err)
		assert.Equal(t, "Edited", updated.Content)
	})
}

func TestForumService_Vote(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	category := f.store.AddForumCategory("General Discussion", "general", 1)
	post := f.createPost(t, f.creator, category.ID, "Landscaping bids are in")
	comment := f.createComment(t, f.vendor, post.ID, nil)

	steps := []struct {
		actor     models.Actor
		direction models.VoteDirection
		wantCount int
		wantDir   *models.VoteDirection
	}{
		{f.neighbor, models.UpVote, 1, ptr(models.UpVote)},
		{f.vendor, models.UpVote, 2, ptr(models.UpVote)},
		{f.neighbor, models.DownVote, 0, ptr(models.DownVote)},
		{f.neighbor, models.DownVote, 1, nil},
		{f.vendor, models.UpVote, 0, nil},
	}
	for i, step := range steps {
		result, err := f.forum.Vote(ctx, step.actor, models.PostVotable, post.ID, step.direction)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.wantCount, result.VoteCount, "step %d", i)
		assert.Equal(t, step.wantDir, result.Direction, "step %d", i)
	}

	result, err := f.forum.Vote(ctx, f.creator, models.CommentVotable, comment.ID, models.DownVote)
	require.NoError(t, err)
	assert.Equal(t, -1, result.VoteCount)
	stored, err := f.store.GetCommentById(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, stored.VoteCount)

	_, err = f.forum.Vote(ctx, f.creator, models.PostVotable, post.ID, "sideways")
	requireErrorResponse(t, err, http.StatusBadRequest, models.ValidationError, "direction must be up or down")

	_, err = f.forum.Vote(ctx, f.creator, models.CommentVotable, "00000000-0000-0000-0000-000000000000", models.UpVote)
	requireErrorResponse(t, err, http.StatusNotFound, models.ValidationError, "Comment not found")

	_, err = f.forum.Vote(ctx, models.Actor{}, models.PostVotable, post.ID, models.UpVote)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func ptr[T any](v T) *T { return &v }
