package domain

// GenerationSettings are the user's choices for one generation call.
// AspectRatio and Quality are free-form keys; unknown values fall back to
// defaults during dimension resolution.
type GenerationSettings struct {
	AspectRatio string `json:"aspectRatio"`
	Quality     string `json:"quality"`
	Count       int    `json:"count"`
}
