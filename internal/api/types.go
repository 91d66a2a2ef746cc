package api

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type CatalogSummary struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Count      int    `json:"count"`
	First      int    `json:"first"`
}

type CatalogList struct {
	Object string           `json:"object"`
	Data   []CatalogSummary `json:"data"`
}

type CountryDTO struct {
	BytesPerChar    uint8    `json:"bytes_per_char"`
	Country         uint16   `json:"country"`
	LanguageFamily  uint16   `json:"language_family"`
	LanguageVersion uint16   `json:"language_version"`
	Language        string   `json:"language,omitempty"`
	Tag             string   `json:"tag,omitempty"`
	Codepages       []uint16 `json:"codepages"`
	Filename        string   `json:"filename"`
}

type CatalogDetail struct {
	CatalogSummary
	Version       uint16     `json:"version"`
	IndexWidth    int        `json:"index_width"`
	IndexOffset   uint16     `json:"index_offset"`
	CountryOffset uint16     `json:"country_offset"`
	ExtOffset     uint32     `json:"extension_offset,omitempty"`
	Size          int        `json:"size"`
	Country       CountryDTO `json:"country"`
}

type MessageDTO struct {
	ID        string   `json:"id"`
	Number    int      `json:"number"`
	Type      string   `json:"type"`
	Letter    string   `json:"letter"`
	Text      string   `json:"text"`
	Formatted string   `json:"formatted"`
	Args      []string `json:"args,omitempty"`
	Newline   bool     `json:"newline"`
}
