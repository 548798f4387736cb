package agenda

// ScheduleRequest puts a recipe on the caller's agenda
// swagger:model ScheduleRequest
type ScheduleRequest struct {
	RecipeID string `json:"recipe_id" example:"8a0d1b7c-..."`
	Date     string `json:"date" example:"2024-06-01"`
	MealType string `json:"meal_type" example:"Comida"`
}

// MonthResponse lists the days of a month that have scheduled recipes.
// swagger:model MonthResponse
type MonthResponse struct {
	Year  int   `json:"year"`
	Month int   `json:"month"`
	Days  []int `json:"days"`
}
