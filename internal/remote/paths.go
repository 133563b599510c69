package remote

import (
	"net/url"
	"path"
	"strings"

	"github.com/metalagman/taskcanvas/internal/model"
)

// Collection names under a user root.
const (
	// CollectionProjects holds one document per project.
	CollectionProjects = "projects"
	// CollectionTasks holds one document per task.
	CollectionTasks = "tasks"
	// CollectionMemos holds one document per memo.
	CollectionMemos = "memos"
	// CollectionState holds the app-state document.
	CollectionState = "state"

	// AppStateID is the id of the app-state document inside CollectionState.
	AppStateID = "app"
)

// Collections lists the collections synced for every user.
var Collections = []string{CollectionProjects, CollectionTasks, CollectionMemos, CollectionState}

// UserRoot is the path prefix of everything a user owns.
func UserRoot(uid string) string {
	return path.Join("users", uid)
}

// Scoped prefixes a user-relative path with the user root.
func Scoped(uid, rel string) string {
	return path.Join(UserRoot(uid), rel)
}

// DocPath is the user-relative path of a document.
func DocPath(collection, id string) string {
	return path.Join(collection, id)
}

// SplitDocPath splits a document path into its collection path and id.
func SplitDocPath(p string) (string, string) {
	p = strings.Trim(p, "/")
	return path.Dir(p), path.Base(p)
}

// AttachmentPath is the user-relative blob path for an entity's file.
func AttachmentPath(entityID, name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "attachment"
	}
	return path.Join("attachments", entityID, name)
}

// BlobPathFromURL extracts the storage path from a download URL of the
// form .../o/<escaped path>?alt=media. It returns "" when the URL does not
// carry one.
func BlobPathFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	escaped := u.EscapedPath()
	idx := strings.LastIndex(escaped, "/o/")
	if idx < 0 {
		return ""
	}
	p, err := url.PathUnescape(escaped[idx+len("/o/"):])
	if err != nil {
		return ""
	}
	return strings.Trim(p, "/")
}

// BlobURL builds the download URL for a stored blob.
func BlobURL(baseURL, blobPath string) string {
	return strings.TrimRight(baseURL, "/") + "/o/" + url.PathEscape(blobPath) + "?alt=media"
}

// AttachmentBlobPath returns the storage path of an attachment, preferring
// the stored path and falling back to parsing the download URL.
func AttachmentBlobPath(a *model.Attachment) string {
	if a == nil {
		return ""
	}
	if p := strings.TrimSpace(a.Path); p != "" {
		return p
	}
	return BlobPathFromURL(a.URL)
}
