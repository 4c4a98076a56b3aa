package atelier

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/atelier/assets"
	"github.com/eringen/atelier/records"
)

type workflowEnv struct {
	wf     *Workflows
	store  *Store
	mem    *assets.MemoryBackend
	client *assets.Client
	cache  *ContentCache
}

var testNow = time.UnixMilli(1700000000000).UTC()

func newWorkflowEnv(t *testing.T) *workflowEnv {
	t.Helper()
	store := setupTestStore(t)
	mem := assets.NewMemoryBackend()
	client := assets.NewClient(mem, "https://cdn.example.com", assets.WithClock(func() time.Time { return testNow }))
	cache := NewMemoryCache(64, time.Minute)
	wf := NewWorkflows(WorkflowConfig{
		Store:  store,
		Assets: client,
		Cache:  cache,
		Now:    func() time.Time { return testNow },
	})
	return &workflowEnv{wf: wf, store: store, mem: mem, client: client, cache: cache}
}

func adminCtx() context.Context {
	return WithIdentity(context.Background(), "admin")
}

func pngUpload(t *testing.T, name string, w, h int) *Upload {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 8 {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 120, B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &Upload{Filename: name, Data: buf.Bytes()}
}

func projectForm(title string) ProjectForm {
	return ProjectForm{
		Title:      title,
		EventDate:  "2024-06-01",
		GalleryURL: "https://gallery.example.com/" + Slugify(title),
		Published:  true,
	}
}

func TestSaveProjectWithThumbnail(t *testing.T) {
	env := newWorkflowEnv(t)

	form := projectForm("Anna & Ben")
	form.Thumbnail = pngUpload(t, "cover.png", 3000, 4000)
	p, err := env.wf.SaveProject(adminCtx(), "", form)
	require.NoError(t, err)

	keys := env.mem.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], assets.BucketProjectThumbnails+"/"), keys[0])

	objectPath, ok := env.client.ResolvePath(p.ThumbnailURL, assets.BucketProjectThumbnails)
	require.True(t, ok, "thumbnail URL %q should resolve", p.ThumbnailURL)
	assert.Equal(t, keys[0], assets.BucketProjectThumbnails+"/"+objectPath)
	assert.True(t, strings.HasSuffix(objectPath, ".jpg"))

	data, ok := env.mem.Get(assets.BucketProjectThumbnails, objectPath)
	require.True(t, ok)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 800)
	assert.LessOrEqual(t, img.Bounds().Dy(), 1200)
	assert.Equal(t, "image/jpeg", env.mem.ContentType(assets.BucketProjectThumbnails, objectPath))

	stored, err := env.store.Projects.GetOne(context.Background(), records.ByID(p.ID))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, p.ThumbnailURL, stored.ThumbnailURL)
}

func TestSaveProjectReplacesThumbnail(t *testing.T) {
	env := newWorkflowEnv(t)

	form := projectForm("Coast")
	form.Thumbnail = pngUpload(t, "first.png", 40, 30)
	first, err := env.wf.SaveProject(adminCtx(), "", form)
	require.NoError(t, err)
	oldPath, ok := env.client.ResolvePath(first.ThumbnailURL, assets.BucketProjectThumbnails)
	require.True(t, ok)

	form.Thumbnail = pngUpload(t, "second.png", 40, 30)
	second, err := env.wf.SaveProject(adminCtx(), first.ID, form)
	require.NoError(t, err)
	assert.NotEqual(t, first.ThumbnailURL, second.ThumbnailURL)

	assert.Equal(t, []string{oldPath}, env.mem.Removed(assets.BucketProjectThumbnails))
	assert.Len(t, env.mem.Keys(), 1)
}

func TestSaveProjectKeepsThumbnailWhenNoneGiven(t *testing.T) {
	env := newWorkflowEnv(t)

	form := projectForm("Keep")
	form.Thumbnail = pngUpload(t, "a.png", 20, 20)
	p, err := env.wf.SaveProject(adminCtx(), "", form)
	require.NoError(t, err)

	form.Thumbnail = nil
	form.Title = "Keep renamed"
	updated, err := env.wf.SaveProject(adminCtx(), p.ID, form)
	require.NoError(t, err)
	assert.Equal(t, p.ThumbnailURL, updated.ThumbnailURL)
	assert.Equal(t, "Keep renamed", updated.Title)
	assert.Empty(t, env.mem.Removed(assets.BucketProjectThumbnails))

	form.RemoveThumbnail = true
	cleared, err := env.wf.SaveProject(adminCtx(), p.ID, form)
	require.NoError(t, err)
	assert.Empty(t, cleared.ThumbnailURL)
	assert.Empty(t, env.mem.Keys())
}

func TestWorkflowsRequireIdentity(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	form := projectForm("Nope")
	form.Thumbnail = pngUpload(t, "x.png", 10, 10)
	_, err := env.wf.SaveProject(ctx, "", form)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = env.wf.ToggleProjectPublished(ctx, "any")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = env.wf.SaveBlogPost(ctx, "", BlogPostForm{Title: "x"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, env.wf.DeleteTestimonial(ctx, "any"), ErrNotAuthenticated)
	_, err = env.wf.ListProjects(ctx, ProjectsAll)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = env.wf.Stats(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.Empty(t, env.mem.Calls(), "no storage call may happen before authentication")
}

func TestSaveProjectValidation(t *testing.T) {
	env := newWorkflowEnv(t)

	_, err := env.wf.SaveProject(adminCtx(), "", ProjectForm{Title: "  "})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "title")
	assert.Contains(t, ve.Fields, "gallery_url")

	form := projectForm("Bad date")
	form.EventDate = "01/06/2024"
	_, err = env.wf.SaveProject(adminCtx(), "", form)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "event_date")
}

func TestSaveProjectWriteFailureRemovesUpload(t *testing.T) {
	env := newWorkflowEnv(t)
	require.NoError(t, env.store.DB().Migrator().DropTable(&Project{}))

	form := projectForm("Orphan")
	form.Thumbnail = pngUpload(t, "o.png", 20, 20)
	_, err := env.wf.SaveProject(adminCtx(), "", form)
	require.Error(t, err)

	assert.Empty(t, env.mem.Keys(), "the staged upload must be removed")
	assert.Len(t, env.mem.Removed(assets.BucketProjectThumbnails), 1)
}

func TestSaveProjectUploadFailureWritesNothing(t *testing.T) {
	env := newWorkflowEnv(t)
	env.mem.PutErr = assert.AnError

	form := projectForm("Broken upload")
	form.Thumbnail = pngUpload(t, "b.png", 20, 20)
	_, err := env.wf.SaveProject(adminCtx(), "", form)
	require.Error(t, err)
	assert.True(t, assets.IsUploadError(err))

	n, err := env.store.Projects.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveProjectRejectsUndecodableThumbnail(t *testing.T) {
	env := newWorkflowEnv(t)

	form := projectForm("Garbage")
	form.Thumbnail = &Upload{Filename: "x.png", Data: []byte("not an image")}
	_, err := env.wf.SaveProject(adminCtx(), "", form)
	require.Error(t, err)
	assert.Equal(t, 400, StatusCode(err))
	assert.Empty(t, env.mem.Calls())
}

func TestToggleProjectPublishedChangesOnlyPublished(t *testing.T) {
	env := newWorkflowEnv(t)
	ctx := context.Background()

	p, err := env.wf.SaveProject(adminCtx(), "", projectForm("Toggle"))
	require.NoError(t, err)
	before, err := env.store.Projects.GetOne(ctx, records.ByID(p.ID))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	v, err := env.wf.ToggleProjectPublished(adminCtx(), p.ID)
	require.NoError(t, err)
	assert.False(t, v)

	after, err := env.store.Projects.GetOne(ctx, records.ByID(p.ID))
	require.NoError(t, err)
	assert.False(t, after.Published)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	// Everything else is untouched.
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.CreatedAt.Unix(), after.CreatedAt.Unix())
	assert.Equal(t, before.GalleryURL, after.GalleryURL)
	assert.Equal(t, before.EventDate, after.EventDate)
	assert.Equal(t, before.IsLocked, after.IsLocked)
	assert.Equal(t, before.AccessCode, after.AccessCode)

	_, err = env.wf.ToggleProjectPublished(adminCtx(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleProjectLockedGeneratesCode(t *testing.T) {
	env := newWorkflowEnv(t)

	p, err := env.wf.SaveProject(adminCtx(), "", projectForm("Lock me"))
	require.NoError(t, err)
	require.Empty(t, p.AccessCode)

	locked, err := env.wf.ToggleProjectLocked(adminCtx(), p.ID)
	require.NoError(t, err)
	assert.True(t, locked)

	got, err := env.wf.GetProject(adminCtx(), p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLocked)
	assert.Regexp(t, `^[0-9A-Z]{8}$`, got.AccessCode)

	unlocked, err := env.wf.ToggleProjectLocked(adminCtx(), p.ID)
	require.NoError(t, err)
	assert.False(t, unlocked)
	again, err := env.wf.GetProject(adminCtx(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, got.AccessCode, again.AccessCode, "unlocking keeps the code")
}

func TestListProjectsFilters(t *testing.T) {
	env := newWorkflowEnv(t)

	for i, title := range []string{"One", "Two", "Three"} {
		form := projectForm(title)
		form.Published = i != 2
		form.IsLocked = i == 0
		_, err := env.wf.SaveProject(adminCtx(), "", form)
		require.NoError(t, err)
	}

	cases := map[ProjectFilter]int{ProjectsAll: 3, ProjectsPublished: 2, ProjectsDraft: 1, ProjectsLocked: 1}
	for filter, want := range cases {
		got, err := env.wf.ListProjects(adminCtx(), filter)
		require.NoError(t, err)
		assert.Len(t, got, want, "filter %s", filter)
	}
	_, err := env.wf.ListProjects(adminCtx(), "bogus")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestDeleteProjectRemovesThumbnail(t *testing.T) {
	env := newWorkflowEnv(t)

	form := projectForm("Gone")
	form.Thumbnail = pngUpload(t, "g.png", 20, 20)
	p, err := env.wf.SaveProject(adminCtx(), "", form)
	require.NoError(t, err)

	require.NoError(t, env.wf.DeleteProject(adminCtx(), p.ID))
	assert.Empty(t, env.mem.Keys())
	_, err = env.wf.GetProject(adminCtx(), p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProjectSurvivesStorageFailure(t *testing.T) {
	env := newWorkflowEnv(t)

	form := projectForm("Sticky")
	form.Thumbnail = pngUpload(t, "s.png", 20, 20)
	p, err := env.wf.SaveProject(adminCtx(), "", form)
	require.NoError(t, err)

	env.mem.RemoveErr = assert.AnError
	require.NoError(t, env.wf.DeleteProject(adminCtx(), p.ID))
	n, err := env.store.Projects.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func blogForm(title string) BlogPostForm {
	return BlogPostForm{
		Title:    title,
		Excerpt:  "About " + title,
		Content:  "<p>Hello</p>",
		Category: "Wedding Tips",
	}
}

func TestSaveBlogPostSlugs(t *testing.T) {
	env := newWorkflowEnv(t)

	p, err := env.wf.SaveBlogPost(adminCtx(), "", blogForm("Golden Hour Tips!"))
	require.NoError(t, err)
	assert.Equal(t, "golden-hour-tips", p.Slug)
	assert.Equal(t, DefaultRobotsMeta, p.RobotsMeta)

	_, err = env.wf.SaveBlogPost(adminCtx(), "", blogForm("Golden hour tips"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "slug")

	// Saving a post under its own slug is not a duplicate.
	form := blogForm("Golden Hour Tips!")
	form.Excerpt = "changed"
	updated, err := env.wf.SaveBlogPost(adminCtx(), p.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Excerpt)
}

func TestSaveBlogPostPublishedAt(t *testing.T) {
	env := newWorkflowEnv(t)

	form := blogForm("Draft first")
	p, err := env.wf.SaveBlogPost(adminCtx(), "", form)
	require.NoError(t, err)
	assert.Nil(t, p.PublishedAt)

	form.Published = true
	p, err = env.wf.SaveBlogPost(adminCtx(), p.ID, form)
	require.NoError(t, err)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, p.PublishedAt.Equal(testNow))

	form.Published = false
	p, err = env.wf.SaveBlogPost(adminCtx(), p.ID, form)
	require.NoError(t, err)
	assert.Nil(t, p.PublishedAt)
}

func TestSaveBlogPostSanitizesContent(t *testing.T) {
	env := newWorkflowEnv(t)

	form := blogForm("Safe")
	form.Content = `<p onclick="x()">Hi</p><script>alert(1)</script>`
	p, err := env.wf.SaveBlogPost(adminCtx(), "", form)
	require.NoError(t, err)
	assert.NotContains(t, p.Content, "script")
	assert.NotContains(t, p.Content, "onclick")
	assert.Contains(t, p.Content, "Hi")
}

func TestSaveBlogPostCategory(t *testing.T) {
	env := newWorkflowEnv(t)

	form := blogForm("Odd")
	form.Category = "Cooking"
	_, err := env.wf.SaveBlogPost(adminCtx(), "", form)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "category")
}

func TestSaveBlogPostImage(t *testing.T) {
	env := newWorkflowEnv(t)

	form := blogForm("Pictured")
	form.ImageFile = pngUpload(t, "hero.png", 2400, 1600)
	p, err := env.wf.SaveBlogPost(adminCtx(), "", form)
	require.NoError(t, err)

	path, ok := env.client.ResolvePath(p.Image, assets.BucketBlogImages)
	require.True(t, ok)
	data, ok := env.mem.Get(assets.BucketBlogImages, path)
	require.True(t, ok)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1200, img.Bounds().Dx())
	assert.Equal(t, 800, img.Bounds().Dy())

	require.NoError(t, env.wf.DeleteBlogPost(adminCtx(), p.ID))
	assert.Empty(t, env.mem.Keys())
}

func TestSaveServiceMedia(t *testing.T) {
	env := newWorkflowEnv(t)

	video := append([]byte("\x00\x00\x00\x18ftypmp42"), make([]byte, 64)...)
	s, err := env.wf.SaveService(adminCtx(), "", ServiceForm{
		Title:    "Films",
		IconName: "Film",
		Media:    &Upload{Filename: "reel.mp4", Data: video},
	})
	require.NoError(t, err)
	assert.Equal(t, MediaVideo, s.MediaType)

	path, ok := env.client.ResolvePath(s.MediaURL, assets.BucketImages)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(path, "services/service_"), path)
	assert.True(t, strings.HasSuffix(path, ".mp4"), path)
	stored, _ := env.mem.Get(assets.BucketImages, path)
	assert.Equal(t, video, stored, "videos are stored unchanged")

	s, err = env.wf.SaveService(adminCtx(), s.ID, ServiceForm{
		Title:    "Films",
		IconName: "Film",
		Media:    pngUpload(t, "still.png", 30, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, MediaImage, s.MediaType)
	assert.True(t, strings.HasSuffix(s.MediaURL, ".jpg"))
	assert.Equal(t, []string{path}, env.mem.Removed(assets.BucketImages))

	_, err = env.wf.SaveService(adminCtx(), "", ServiceForm{Title: "Bad icon", IconName: "Rocket"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "icon_name")
}

func TestTestimonialLifecycle(t *testing.T) {
	env := newWorkflowEnv(t)

	tm, err := env.wf.SaveTestimonial(adminCtx(), "", TestimonialForm{Quote: "Lovely", Author: "Sam", DisplayOrder: 2})
	require.NoError(t, err)
	_, err = env.wf.SaveTestimonial(adminCtx(), "", TestimonialForm{Quote: "Great", Author: "Kim", DisplayOrder: 1})
	require.NoError(t, err)

	list, err := env.wf.ListTestimonials(adminCtx())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Kim", list[0].Author)

	v, err := env.wf.ToggleTestimonialPublished(adminCtx(), tm.ID)
	require.NoError(t, err)
	assert.True(t, v)

	_, err = env.wf.SaveTestimonial(adminCtx(), "missing", TestimonialForm{Quote: "x", Author: "y"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.wf.DeleteTestimonial(adminCtx(), tm.ID))
	list, err = env.wf.ListTestimonials(adminCtx())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSavePageSEOUpserts(t *testing.T) {
	env := newWorkflowEnv(t)

	first, err := env.wf.SavePageSEO(adminCtx(), "home", PageSEOForm{PageName: "Home", SEOTitle: "Studio"})
	require.NoError(t, err)
	assert.Equal(t, DefaultRobotsMeta, first.RobotsMeta)

	second, err := env.wf.SavePageSEO(adminCtx(), "home", PageSEOForm{SEOTitle: "Studio 2", OGType: "website"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Studio 2", second.SEOTitle)
	assert.Equal(t, "Home", second.PageName)

	list, err := env.wf.ListPageSEO(adminCtx())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = env.wf.SavePageSEO(adminCtx(), "home", PageSEOForm{OGType: "movie"})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestHomepageImageSlots(t *testing.T) {
	env := newWorkflowEnv(t)

	img, err := env.wf.SetHomepageImage(adminCtx(), 3, pngUpload(t, "h.png", 3000, 2000), "Dunes")
	require.NoError(t, err)
	path, ok := env.client.ResolvePath(img.ImageURL, assets.BucketImages)
	require.True(t, ok)
	assert.Regexp(t, `^homepage/position_3_1700000000000_[0-9a-z]{4}\.jpg$`, path)

	replaced, err := env.wf.SetHomepageImage(adminCtx(), 3, pngUpload(t, "h2.png", 30, 20), "")
	require.NoError(t, err)
	assert.Equal(t, "Dunes", replaced.AltText, "empty alt keeps the stored text")
	assert.Equal(t, []string{path}, env.mem.Removed(assets.BucketImages))

	require.NoError(t, env.wf.SetHomepageImageAlt(adminCtx(), 3, "Sand"))
	assert.ErrorIs(t, env.wf.SetHomepageImageAlt(adminCtx(), 4, "x"), ErrNotFound)

	_, err = env.wf.SetHomepageImage(adminCtx(), len(HomepageSlots), pngUpload(t, "x.png", 10, 10), "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	require.NoError(t, env.wf.ResetHomepageImage(adminCtx(), 3))
	assert.Empty(t, env.mem.Keys())
	rows, err := env.wf.ListHomepageImages(adminCtx())
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, env.wf.ResetHomepageImage(adminCtx(), 3), "resetting an empty slot is a no-op")
}

func TestAboutImageSlots(t *testing.T) {
	env := newWorkflowEnv(t)

	img, err := env.wf.SetAboutImage(adminCtx(), "hero", pngUpload(t, "a.png", 40, 40), "Portrait")
	require.NoError(t, err)
	path, ok := env.client.ResolvePath(img.ImageURL, assets.BucketImages)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(path, "pages/hero_"), path)

	_, err = env.wf.SetAboutImage(adminCtx(), "nope", pngUpload(t, "a.png", 10, 10), "")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	require.NoError(t, env.wf.SetAboutImageAlt(adminCtx(), "hero", "Me"))
	require.NoError(t, env.wf.ResetAboutImage(adminCtx(), "hero"))
	assert.Empty(t, env.mem.Keys())

	rows, err := env.wf.ListAboutImages(adminCtx())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].ImageURL)
	assert.Equal(t, "Me", rows[0].AltText)
}

func TestSectionBackground(t *testing.T) {
	env := newWorkflowEnv(t)

	bg, err := env.wf.SetSectionBackground(adminCtx(), "services", pngUpload(t, "bg.png", 50, 50), 0.4)
	require.NoError(t, err)
	assert.Equal(t, MediaImage, bg.MediaType)
	assert.InDelta(t, 0.4, bg.OverlayOpacity, 1e-9)

	bg, err = env.wf.SetSectionBackground(adminCtx(), "services", nil, 0.7)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, bg.OverlayOpacity, 1e-9)
	assert.Len(t, env.mem.Keys(), 1)

	_, err = env.wf.SetSectionBackground(adminCtx(), "services", nil, 1.5)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	_, err = env.wf.SetSectionBackground(adminCtx(), "footer", nil, 0.5)
	assert.ErrorAs(t, err, &ve)

	require.NoError(t, env.wf.ResetSectionBackground(adminCtx(), "services"))
	assert.Empty(t, env.mem.Keys())
}

func TestWorkflowsInvalidateCache(t *testing.T) {
	env := newWorkflowEnv(t)
	site := NewSite(SiteConfig{Name: "Studio", URL: "https://studio.example"}, env.store, env.client, env.cache)
	ctx := context.Background()

	page, err := site.Stories(ctx)
	require.NoError(t, err)
	assert.Empty(t, page.Stories)

	_, err = env.wf.SaveProject(adminCtx(), "", projectForm("Fresh"))
	require.NoError(t, err)

	page, err = site.Stories(ctx)
	require.NoError(t, err)
	assert.Len(t, page.Stories, 1)
}
