package api

import "github.com/JaimeStill/pdf-annotator/pkg/openapi"

// spec holds OpenAPI operation definitions for the session endpoints.
type spec struct {
	List          *openapi.Operation
	Open          *openapi.Operation
	Status        *openapi.Operation
	Close         *openapi.Operation
	Notifications *openapi.Operation
	Navigate      *openapi.Operation
	Undo          *openapi.Operation
	Redo          *openapi.Operation
	SetTool       *openapi.Operation
	SetZoom       *openapi.Operation
	SetOverlay    *openapi.Operation
	Origin        *openapi.Operation
	PointerDown   *openapi.Operation
	Export        *openapi.Operation

	ListObjects     *openapi.Operation
	AddObject       *openapi.Operation
	GroupDrawing    *openapi.Operation
	ModifyObject    *openapi.Operation
	RemoveObject    *openapi.Operation
	DuplicateObject *openapi.Operation
	ListRuns        *openapi.Operation
	Search          *openapi.Operation
	HighlightRun    *openapi.Operation
	MaskRun         *openapi.Operation
	ReplaceRun      *openapi.Operation

	DuplicatePage     *openapi.Operation
	DeletePage        *openapi.Operation
	MovePage          *openapi.Operation
	UndoPageOperation *openapi.Operation
	Overlay           *openapi.Operation

	ListVersions   *openapi.Operation
	SaveVersion    *openapi.Operation
	RestoreVersion *openapi.Operation

	Recent *openapi.Operation
}

var (
	sessionID = openapi.PathParam("id", "Session UUID")
	objectID  = openapi.PathParam("objectId", "Object UUID")
	pageID    = openapi.PathParam("pageId", "Page UUID")
	versionID = openapi.PathParam("versionId", "Version UUID")
	runIndex  = openapi.PathParamOf("index", "Text run index on the active page",
		&openapi.Schema{Type: "integer", Minimum: new(float64)})
	recentKind = openapi.PathParamOf("kind", "Recent list",
		&openapi.Schema{Type: "string", Enum: []string{"images", "signatures"}})
)

func params(p ...*openapi.Parameter) []*openapi.Parameter { return p }

func statusOp(summary, description, body string, p ...*openapi.Parameter) *openapi.Operation {
	op := &openapi.Operation{
		Summary:     summary,
		Description: description,
		Parameters:  params(append([]*openapi.Parameter{sessionID}, p...)...),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Session status", "Status"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	}
	if body != "" {
		op.RequestBody = openapi.RequestBodyJSON(body, true)
		op.Responses[400] = openapi.ResponseRef("BadRequest")
	}
	return op
}

func objectOp(summary, description string, p ...*openapi.Parameter) *openapi.Operation {
	return &openapi.Operation{
		Summary:     summary,
		Description: description,
		Parameters:  params(append([]*openapi.Parameter{sessionID}, p...)...),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Object created", "Object"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	}
}

// Spec contains OpenAPI operation definitions for all session endpoints.
var Spec = spec{
	List: &openapi.Operation{
		Summary:     "List sessions",
		Description: "Returns a paginated list of open sessions",
		Parameters: params(
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("page_size", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Search query (matches document name)", false),
			openapi.QueryParam("sort", "string", "Comma-separated sort fields: name, pages, opened. Prefix with - for descending", false),
		),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Paginated list of sessions", "SessionPageResult"),
		},
	},
	Open: &openapi.Operation{
		Summary:     "Open session",
		Description: "Opens a PDF from a multipart file upload or a source URL and loads its first page",
		RequestBody: &openapi.RequestBody{
			Required: true,
			Content: map[string]*openapi.MediaType{
				"multipart/form-data": {Schema: &openapi.Schema{
					Type: "object",
					Properties: map[string]*openapi.Property{
						"file": {Type: "string", Format: "binary", Description: "PDF document"},
						"name": {Type: "string", Description: "Display name, defaults to the file name"},
					},
					Required: []string{"file"},
				}},
				"application/json": {Schema: openapi.SchemaRef("OpenRequest")},
			},
		},
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Session opened", "Status"),
			400: openapi.ResponseRef("BadRequest"),
			413: {Description: "Upload exceeds the maximum size"},
			429: {Description: "Too many open sessions"},
			502: {Description: "Source URL could not be fetched"},
		},
	},
	Status: statusOp("Get session", "Returns the page list, active page, navigation phase and history depth", ""),
	Close: &openapi.Operation{
		Summary:     "Close session",
		Description: "Flushes pending changes and discards the session",
		Parameters:  params(sessionID),
		Responses: map[int]*openapi.Response{
			204: {Description: "Session closed"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Notifications: &openapi.Operation{
		Summary:     "Drain notifications",
		Description: "Returns and clears the notifications queued since the last call",
		Parameters:  params(sessionID),
		Responses: map[int]*openapi.Response{
			200: {Description: "Queued notifications", Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Notification")}},
			}},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Navigate:    statusOp("Navigate", "Switches the active page and responds once it has loaded. Out-of-range requests are ignored", "NavigateRequest"),
	Undo:        statusOp("Undo", "Restores the newest undo entry, navigating to its page when needed", ""),
	Redo:        statusOp("Redo", "Re-applies the newest redo entry, navigating to its page when needed", ""),
	SetTool:     statusOp("Set tool", "Selects the active editor tool", "ToolRequest"),
	SetOverlay:  statusOp("Resize overlay", "Resizes the overlay of the active page and rebuilds its text hitboxes", "OverlayRequest"),
	PointerDown: &openapi.Operation{
		Summary:     "Begin gesture",
		Description: "Captures the state the next change is undone to",
		Parameters:  params(sessionID),
		Responses: map[int]*openapi.Response{
			204: {Description: "Gesture started"},
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	SetZoom: &openapi.Operation{
		Summary:     "Set zoom",
		Description: "Sets the zoom percentage, clamped to 50-200",
		Parameters:  params(sessionID),
		RequestBody: openapi.RequestBodyJSON("ZoomRequest", true),
		Responses: map[int]*openapi.Response{
			200: {Description: "Applied zoom"},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Origin: &openapi.Operation{
		Summary:     "Visible origin",
		Description: "Maps the visible viewport onto unscaled overlay coordinates",
		Parameters:  params(sessionID),
		RequestBody: openapi.RequestBodyJSON("OriginRequest", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Overlay point", "Point"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Export: &openapi.Operation{
		Summary:     "Export PDF",
		Description: "Composites every page's annotations onto the source document",
		Parameters:  params(sessionID),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseBinary("Annotated PDF", "application/pdf").
				WithHeader("X-Export-Pages", "Pages written").
				WithHeader("X-Export-Modified", "Pages that received annotations").
				WithHeader("X-Export-Failures", "Pages whose annotations failed to export").
				WithHeader("X-Export-Partial", "Failed pages that kept some of their annotations"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},

	ListObjects: &openapi.Operation{
		Summary:     "List objects",
		Description: "Returns the user objects on the active page",
		Parameters:  params(sessionID),
		Responses: map[int]*openapi.Response{
			200: {Description: "Objects", Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Object")}},
			}},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	AddObject: func() *openapi.Operation {
		op := objectOp("Add object", "Creates an object from a tool with its defaults, places a fully specified object, or places an image data URL")
		op.RequestBody = openapi.RequestBodyJSON("AddObjectRequest", true)
		return op
	}(),
	GroupDrawing: func() *openapi.Operation {
		op := objectOp("Group drawing", "Replaces drawing paths with one drawing group. With no IDs every path on the page is grouped")
		op.RequestBody = openapi.RequestBodyJSON("GroupRequest", false)
		return op
	}(),
	ModifyObject: &openapi.Operation{
		Summary:     "Modify object",
		Description: "Applies a partial update to an object's geometry, style and content",
		Parameters:  params(sessionID, objectID),
		RequestBody: openapi.RequestBodyJSON("Patch", true),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Object updated", "Object"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	RemoveObject: &openapi.Operation{
		Summary:    "Remove object",
		Parameters: params(sessionID, objectID),
		Responses: map[int]*openapi.Response{
			204: {Description: "Object removed"},
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	DuplicateObject: objectOp("Duplicate object", "Adds a copy offset by 20 pixels. Text replacements cannot be duplicated", objectID),
	ListRuns: &openapi.Operation{
		Summary:     "List text runs",
		Description: "Returns the text runs of the active page in overlay space",
		Parameters:  params(sessionID),
		Responses: map[int]*openapi.Response{
			200: {Description: "Text runs", Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("TextRun")}},
			}},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	Search: &openapi.Operation{
		Summary:     "Search text",
		Description: "Finds the text runs of every page whose text contains q, ignoring case. Navigate to a match's page and address the run by run_index",
		Parameters: params(
			sessionID,
			openapi.QueryParam("q", "string", "Text to find", true),
		),
		Responses: map[int]*openapi.Response{
			200: {Description: "Matching runs in page order", Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("SearchMatch")}},
			}},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	HighlightRun: objectOp("Highlight run", "Highlights a text run", runIndex),
	MaskRun:      objectOp("Mask run", "Covers a text run with a white mask", runIndex),
	ReplaceRun: func() *openapi.Operation {
		op := objectOp("Replace run", "Masks a text run and places editable replacement text over it", runIndex)
		op.RequestBody = openapi.RequestBodyJSON("ReplaceRequest", false)
		return op
	}(),

	DuplicatePage: &openapi.Operation{
		Summary:     "Duplicate page",
		Description: "Inserts a copy of a page, with its annotations, directly after it",
		Parameters:  params(sessionID, pageID),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Page copy", "Page"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},
	DeletePage:        statusOp("Delete page", "Removes a page and its annotations. The last page cannot be deleted", "", pageID),
	MovePage:          statusOp("Move page", "Relocates a page between 1-based positions", "MoveRequest"),
	UndoPageOperation: statusOp("Undo page operation", "Restores the pages from before the newest duplicate, delete or move", ""),
	Overlay: &openapi.Operation{
		Summary:     "Render overlay",
		Description: "Rasterizes a page's annotations as a transparent PNG",
		Parameters:  params(sessionID, pageID),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseBinary("Overlay image", "image/png"),
			404: openapi.ResponseRef("NotFound"),
		},
	},

	ListVersions: &openapi.Operation{
		Summary:     "List versions",
		Description: "Returns the saved versions of the open document, newest first",
		Parameters:  params(sessionID),
		Responses: map[int]*openapi.Response{
			200: {Description: "Versions", Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Version")}},
			}},
			404: openapi.ResponseRef("NotFound"),
		},
	},
	SaveVersion: &openapi.Operation{
		Summary:     "Save version",
		Description: "Stores every page's state as a new version. An empty label becomes \"Version N\"",
		Parameters:  params(sessionID),
		RequestBody: openapi.RequestBodyJSON("VersionRequest", false),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Version saved", "Version"),
			404: openapi.ResponseRef("NotFound"),
			507: {Description: "Storage quota exceeded"},
		},
	},
	RestoreVersion: &openapi.Operation{
		Summary:     "Restore version",
		Description: "Replaces every page's state with a version's and reloads the active page",
		Parameters:  params(sessionID, versionID),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Version restored", "Version"),
			404: openapi.ResponseRef("NotFound"),
			409: openapi.ResponseRef("Conflict"),
		},
	},

	Recent: &openapi.Operation{
		Summary:     "Recent images",
		Description: "Returns the most recently placed images or signatures, newest first",
		Parameters:  params(recentKind),
		Responses: map[int]*openapi.Response{
			200: {Description: "Data URLs", Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}},
			}},
			400: openapi.ResponseRef("BadRequest"),
		},
	},
}

func object(required []string, props map[string]*openapi.Property) *openapi.Schema {
	return &openapi.Schema{Type: "object", Properties: props, Required: required}
}

// Schemas are the component schemas referenced by Spec.
var Schemas = map[string]*openapi.Schema{
	"Status": object(nil, map[string]*openapi.Property{
		"id":             {Type: "string", Format: "uuid"},
		"document_id":    {Type: "string"},
		"name":           {Type: "string"},
		"pages":          {Type: "array", Description: "Pages in display order"},
		"active":         {Type: "integer", Description: "1-based active page index"},
		"active_page_id": {Type: "string", Format: "uuid"},
		"phase":          {Type: "string", Example: "idle"},
		"saving":         {Type: "boolean"},
		"tool":           {Type: "string", Example: "select"},
		"undo":           {Type: "integer"},
		"redo":           {Type: "integer"},
		"page_undo":      {Type: "integer"},
		"zoom":           {Type: "number"},
		"overlay":        {Type: "object"},
		"objects":        {Type: "integer"},
		"hitboxes":       {Type: "integer"},
	}),
	"Summary": object(nil, map[string]*openapi.Property{
		"id":          {Type: "string", Format: "uuid"},
		"document_id": {Type: "string"},
		"name":        {Type: "string"},
		"pages":       {Type: "integer"},
		"opened":      {Type: "string", Format: "date-time"},
	}),
	"SessionPageResult": object(nil, map[string]*openapi.Property{
		"data":        {Type: "array", Description: "Session summaries"},
		"total":       {Type: "integer"},
		"page":        {Type: "integer"},
		"page_size":   {Type: "integer"},
		"total_pages": {Type: "integer"},
	}),
	"OpenRequest": object([]string{"source_url"}, map[string]*openapi.Property{
		"source_url": {Type: "string", Format: "uri"},
		"name":       {Type: "string"},
	}),
	"NavigateRequest": object([]string{"page"}, map[string]*openapi.Property{
		"page": {Type: "integer", Description: "1-based page index"},
	}),
	"ToolRequest": object([]string{"tool"}, map[string]*openapi.Property{
		"tool": {Type: "string", Example: "draw"},
	}),
	"ZoomRequest": object([]string{"zoom"}, map[string]*openapi.Property{
		"zoom": {Type: "number", Example: 125},
	}),
	"OverlayRequest": object([]string{"width"}, map[string]*openapi.Property{
		"width":  {Type: "number"},
		"height": {Type: "number", Description: "Defaults to the page aspect ratio"},
	}),
	"OriginRequest": object([]string{"viewport", "page"}, map[string]*openapi.Property{
		"viewport": {Type: "object", Description: "Visible viewport rect in screen pixels"},
		"page":     {Type: "object", Description: "Page element rect in screen pixels"},
	}),
	"Point": object(nil, map[string]*openapi.Property{
		"x": {Type: "number"},
		"y": {Type: "number"},
	}),
	"AddObjectRequest": object(nil, map[string]*openapi.Property{
		"tool":    {Type: "string", Description: "Kind created with tool defaults", Example: "rect"},
		"options": {Type: "object", Description: "Tool options: origin, color, text, rect, url, path, stroke_width"},
		"object":  {Type: "object", Description: "Fully specified object"},
		"image":   {Type: "object", Description: "Image placement: origin, src data URL, signature"},
	}),
	"GroupRequest": object(nil, map[string]*openapi.Property{
		"ids": {Type: "array", Description: "Drawing path IDs"},
	}),
	"ReplaceRequest": object(nil, map[string]*openapi.Property{
		"text": {Type: "string", Description: "Replacement text, defaults to the run's text"},
	}),
	"MoveRequest": object([]string{"from", "to"}, map[string]*openapi.Property{
		"from": {Type: "integer"},
		"to":   {Type: "integer"},
	}),
	"VersionRequest": object(nil, map[string]*openapi.Property{
		"label": {Type: "string"},
	}),
	"Patch": object(nil, map[string]*openapi.Property{
		"left":     {Type: "number"},
		"top":      {Type: "number"},
		"width":    {Type: "number"},
		"height":   {Type: "number"},
		"angle":    {Type: "number"},
		"text":     {Type: "string"},
		"fill":     {Type: "string"},
		"stroke":   {Type: "string"},
		"fontSize": {Type: "number"},
		"url":      {Type: "string"},
	}),
	"Object": object([]string{"type", "pdfMeta"}, map[string]*openapi.Property{
		"id":      {Type: "string", Format: "uuid"},
		"type":    {Type: "string", Example: "rect"},
		"left":    {Type: "number"},
		"top":     {Type: "number"},
		"width":   {Type: "number"},
		"height":  {Type: "number"},
		"scaleX":  {Type: "number"},
		"scaleY":  {Type: "number"},
		"text":    {Type: "string"},
		"src":     {Type: "string"},
		"pdfMeta": {Type: "object", Description: "Kind tag: type, source, url, signature"},
	}),
	"TextRun": object(nil, map[string]*openapi.Property{
		"str":      {Type: "string"},
		"x":        {Type: "number"},
		"y":        {Type: "number"},
		"width":    {Type: "number"},
		"height":   {Type: "number"},
		"fontSize": {Type: "number"},
	}),
	"SearchMatch": object([]string{"page", "page_id", "run_index", "text"}, map[string]*openapi.Property{
		"page":      {Type: "integer", Description: "1-based display position"},
		"page_id":   {Type: "string", Format: "uuid"},
		"run_index": {Type: "integer"},
		"text":      {Type: "string"},
		"rect":      {Type: "object", Description: "Run bounds in overlay space"},
	}),
	"Page": object(nil, map[string]*openapi.Property{
		"id":          {Type: "string", Format: "uuid"},
		"index":       {Type: "integer"},
		"source_page": {Type: "integer"},
	}),
	"Version": object(nil, map[string]*openapi.Property{
		"id":            {Type: "string", Format: "uuid"},
		"versionNumber": {Type: "integer"},
		"timestamp":     {Type: "integer"},
		"label":         {Type: "string"},
		"data":          {Type: "object", Description: "Page ID to serialized page state"},
	}),
	"Notification": object(nil, map[string]*openapi.Property{
		"level":   {Type: "string", Example: "error"},
		"message": {Type: "string"},
		"time":    {Type: "string", Format: "date-time"},
	}),
}
