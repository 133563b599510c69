package remote

import (
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/rs/zerolog/log"
)

// Sanitize drops nil values from maps and slices recursively so absent
// optional fields are omitted instead of stored as null.
func Sanitize(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if clean, ok := sanitizeValue(v); ok {
			out[k] = clean
		}
	}
	return out
}

func sanitizeValue(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return Sanitize(val), true
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if clean, ok := sanitizeValue(item); ok {
				out = append(out, clean)
			}
		}
		return out, true
	case *time.Time:
		if val == nil {
			return nil, false
		}
		return val.UTC().Format(time.RFC3339Nano), true
	default:
		return v, true
	}
}

func positionFields(p model.Position) map[string]any {
	return map[string]any{"x": p.X, "y": p.Y}
}

// PositionFields is the patch body for a position-only change.
func PositionFields(p model.Position) map[string]any {
	return map[string]any{"position": positionFields(p)}
}

func attachmentFields(a *model.Attachment) any {
	if a == nil {
		return nil
	}
	return map[string]any{"url": a.URL, "name": a.Name, "path": emptyToNil(a.Path)}
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// EncodeTask returns the stored fields of a task.
func EncodeTask(t model.Task) map[string]any {
	fields := map[string]any{
		"title":        t.Title,
		"content":      t.Content,
		"completed":    t.Completed,
		"completedAt":  t.CompletedAt,
		"position":     positionFields(t.Position),
		"startDate":    emptyToNil(t.StartDate),
		"endDate":      emptyToNil(t.EndDate),
		"projectId":    emptyToNil(t.ProjectID),
		"parentTaskId": emptyToNil(t.ParentTaskID),
		"attachment":   attachmentFields(t.Attachment),
	}
	if t.LineStyle != nil {
		fields["lineStyle"] = map[string]any{"color": t.LineStyle.Color, "width": t.LineStyle.Width}
	}
	return Sanitize(fields)
}

// EncodeProject returns the stored fields of a project.
func EncodeProject(p model.Project) map[string]any {
	return Sanitize(map[string]any{
		"title":       p.Title,
		"content":     emptyToNil(p.Content),
		"status":      string(model.ParseProjectStatus(string(p.Status))),
		"position":    positionFields(p.Position),
		"startDate":   emptyToNil(p.StartDate),
		"endDate":     emptyToNil(p.EndDate),
		"attachment":  attachmentFields(p.Attachment),
		"isCollapsed": p.IsCollapsed,
	})
}

// EncodeMemo returns the stored fields of a memo.
func EncodeMemo(m model.Memo) map[string]any {
	return Sanitize(map[string]any{
		"content":  m.Content,
		"position": positionFields(m.Position),
		"color":    emptyToNil(m.Color),
		"width":    m.Width,
		"height":   m.Height,
	})
}

// EncodeAppState returns the stored fields of the app-state document.
func EncodeAppState(s model.AppState) map[string]any {
	parked := make(map[string]any, len(s.ParkedTaskIDs))
	for projectID, ids := range s.ParkedTaskIDs {
		if len(ids) > 0 {
			parked[projectID] = idList(ids)
		}
	}
	return map[string]any{
		"prioritizedTaskIds": idList(s.PrioritizedTaskIDs),
		"parkedTaskIds":      parked,
	}
}

func idList(ids []string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, id)
	}
	return out
}

type positionDoc struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}

func (p positionDoc) model() model.Position {
	return model.Position{X: p.X, Y: p.Y}
}

type attachmentDoc struct {
	URL  string `mapstructure:"url"`
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

func (a *attachmentDoc) model() *model.Attachment {
	if a == nil || (a.URL == "" && a.Path == "") {
		return nil
	}
	return &model.Attachment{URL: a.URL, Name: a.Name, Path: a.Path}
}

type lineStyleDoc struct {
	Color string  `mapstructure:"color"`
	Width float64 `mapstructure:"width"`
}

type taskDoc struct {
	Title        string         `mapstructure:"title"`
	Content      string         `mapstructure:"content"`
	StartDate    string         `mapstructure:"startDate"`
	EndDate      string         `mapstructure:"endDate"`
	Completed    bool           `mapstructure:"completed"`
	CompletedAt  any            `mapstructure:"completedAt"`
	Position     positionDoc    `mapstructure:"position"`
	ProjectID    string         `mapstructure:"projectId"`
	ParentTaskID string         `mapstructure:"parentTaskId"`
	Attachment   *attachmentDoc `mapstructure:"attachment"`
	LineStyle    *lineStyleDoc  `mapstructure:"lineStyle"`
}

type projectDoc struct {
	Title       string         `mapstructure:"title"`
	Content     string         `mapstructure:"content"`
	Status      string         `mapstructure:"status"`
	Position    positionDoc    `mapstructure:"position"`
	StartDate   string         `mapstructure:"startDate"`
	EndDate     string         `mapstructure:"endDate"`
	Attachment  *attachmentDoc `mapstructure:"attachment"`
	IsCollapsed bool           `mapstructure:"isCollapsed"`
}

type memoDoc struct {
	Content  string      `mapstructure:"content"`
	Position positionDoc `mapstructure:"position"`
	Color    string      `mapstructure:"color"`
	Width    float64     `mapstructure:"width"`
	Height   float64     `mapstructure:"height"`
}

type appStateDoc struct {
	PrioritizedTaskIDs []string            `mapstructure:"prioritizedTaskIds"`
	ParkedTaskIDs      map[string][]string `mapstructure:"parkedTaskIds"`
}

// decode fills out from fields, tolerating mismatched types. Fields that
// cannot be decoded keep their zero value, which is the fallback default.
func decode(kind, id string, fields map[string]any, out any) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("build document decoder")
		return
	}
	if err := dec.Decode(fields); err != nil {
		log.Debug().Err(err).Str("kind", kind).Str("id", id).Msg("malformed document fields defaulted")
	}
}

// DecodeTask converts a stored document into a task.
func DecodeTask(doc Document) model.Task {
	var d taskDoc
	decode("task", doc.ID, doc.Fields, &d)
	t := model.Task{
		ID:           doc.ID,
		Title:        d.Title,
		Content:      d.Content,
		StartDate:    d.StartDate,
		EndDate:      d.EndDate,
		Completed:    d.Completed,
		CompletedAt:  parseTimestamp(d.CompletedAt),
		Position:     d.Position.model(),
		ProjectID:    strings.TrimSpace(d.ProjectID),
		ParentTaskID: strings.TrimSpace(d.ParentTaskID),
		Attachment:   d.Attachment.model(),
	}
	if t.ProjectID != "" && t.ParentTaskID != "" {
		// A task under a parent is not also directly in a project.
		t.ProjectID = ""
	}
	if d.LineStyle != nil {
		t.LineStyle = &model.LineStyle{Color: d.LineStyle.Color, Width: d.LineStyle.Width}
	}
	return t
}

// DecodeProject converts a stored document into a project.
func DecodeProject(doc Document) model.Project {
	var d projectDoc
	decode("project", doc.ID, doc.Fields, &d)
	return model.Project{
		ID:          doc.ID,
		Title:       d.Title,
		Content:     d.Content,
		Status:      model.ParseProjectStatus(d.Status),
		Position:    d.Position.model(),
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Attachment:  d.Attachment.model(),
		IsCollapsed: d.IsCollapsed,
	}
}

// DecodeMemo converts a stored document into a memo.
func DecodeMemo(doc Document) model.Memo {
	var d memoDoc
	decode("memo", doc.ID, doc.Fields, &d)
	return model.Memo{
		ID:       doc.ID,
		Content:  d.Content,
		Position: d.Position.model(),
		Color:    d.Color,
		Width:    d.Width,
		Height:   d.Height,
	}
}

// DecodeAppState converts the app-state document.
func DecodeAppState(doc Document) model.AppState {
	var d appStateDoc
	decode("app_state", doc.ID, doc.Fields, &d)
	state := model.AppState{PrioritizedTaskIDs: d.PrioritizedTaskIDs}
	for projectID, ids := range d.ParkedTaskIDs {
		if len(ids) == 0 {
			continue
		}
		if state.ParkedTaskIDs == nil {
			state.ParkedTaskIDs = make(map[string][]string)
		}
		state.ParkedTaskIDs[projectID] = ids
	}
	return state
}

func parseTimestamp(v any) *time.Time {
	var t time.Time
	switch val := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(val))
		if err != nil {
			return nil
		}
		t = parsed
	case float64:
		t = time.UnixMilli(int64(val))
	case int64:
		t = time.UnixMilli(val)
	case int:
		t = time.UnixMilli(int64(val))
	case time.Time:
		t = val
	default:
		return nil
	}
	t = t.UTC()
	return &t
}
