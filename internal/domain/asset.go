package domain

// Upload is a binary object attached to a request, before it is stored.
type Upload struct {
	ContentType  string
	Data         []byte
	OriginalName string
}

// AssetRef names a stored asset relative to the public content root.
type AssetRef struct {
	FileName string
}
