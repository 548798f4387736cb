package social

// RatingRequest sets the caller's score for a recipe
// swagger:model RatingRequest
type RatingRequest struct {
	Score int `json:"score" example:"5"`
}

// CommentRequest is the body of a new comment
// swagger:model CommentRequest
type CommentRequest struct {
	Body string `json:"body" example:"¡Deliciosos!"`
}

// RecommendationRequest suggests a recipe to another user
// swagger:model RecommendationRequest
type RecommendationRequest struct {
	RecipeID string `json:"recipe_id"`
	ToUserID string `json:"to_user_id"`
	Message  string `json:"message"`
}
