package remote

import (
	"testing"

	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBlobURLRoundTrip(t *testing.T) {
	t.Parallel()

	p := "users/u1/attachments/t1/report final.pdf"
	u := BlobURL("http://localhost:8080/", p)
	assert.Equal(t, "http://localhost:8080/o/users%2Fu1%2Fattachments%2Ft1%2Freport%20final.pdf?alt=media", u)
	assert.Equal(t, p, BlobPathFromURL(u))
}

func TestBlobPathFromURLRejectsForeignURLs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", BlobPathFromURL("https://example.com/files/a.pdf"))
	assert.Equal(t, "", BlobPathFromURL("::bad"))
}

func TestAttachmentBlobPathPrefersStoredPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stored", AttachmentBlobPath(&model.Attachment{Path: "stored", URL: BlobURL("h", "other")}))
	assert.Equal(t, "other", AttachmentBlobPath(&model.Attachment{URL: BlobURL("h", "other")}))
	assert.Equal(t, "", AttachmentBlobPath(nil))
}

func TestAttachmentPathCleansName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "attachments/t1/evil.txt", AttachmentPath("t1", "../../evil.txt"))
	assert.Equal(t, "attachments/t1/a.txt", AttachmentPath("t1", `C:\dir\a.txt`))
	assert.Equal(t, "attachments/t1/attachment", AttachmentPath("t1", ""))
}

func TestPathHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "users/u/tasks/t", Scoped("u", DocPath(CollectionTasks, "t")))
	dir, id := SplitDocPath("/users/u/tasks/t")
	assert.Equal(t, "users/u/tasks", dir)
	assert.Equal(t, "t", id)
}
