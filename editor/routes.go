package editor

const (
	ListPath      = "/"
	NewEditorPath = "/editor"
)

func EditorPath(id string) string {
	return NewEditorPath + "/" + id
}

func DetailPath(id string) string {
	return "/blog/" + id
}
