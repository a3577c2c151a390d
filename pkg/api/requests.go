package api

// uploadForm is the decoded multipart/form-data body of POST
// /api/upload-json: the "file" part holds the raw JSON payload and
// "force_reprocess" is an optional bool field, default false.
type uploadForm struct {
	raw            []byte
	forceReprocess bool
}
