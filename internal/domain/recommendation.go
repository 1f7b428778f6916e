package domain

// Recommendation is one ranked neighbor of a preference.
type Recommendation struct {
	HotelID         string  `json:"hotel_id"`
	Name            string  `json:"name"`
	SimilarityScore float64 `json:"similarity_score"`
	Distance        float64 `json:"-"`
	Price           float64 `json:"price"`
	Location        string  `json:"location"`
	Guests          int     `json:"guests"`
	Rating          float64 `json:"rating"`
}

// RecommendationResult is the envelope returned to callers of the API and CLI.
type RecommendationResult struct {
	UserID          string           `json:"user_id"`
	ModelID         string           `json:"model_id"`
	Recommendations []Recommendation `json:"recommendations"`
	Count           int              `json:"count"`
	Timestamp       string           `json:"timestamp"`
	Status          string           `json:"status"`
}
