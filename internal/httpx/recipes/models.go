package recipes

// IngredientInput is one ingredient line of a new recipe.
type IngredientInput struct {
	Name     string `json:"name" example:"Tortilla"`
	Quantity string `json:"quantity" example:"12 piezas"`
}

// StepInput is one preparation step. Position is optional; steps without it
// keep their order in the request.
type StepInput struct {
	Position    *int   `json:"position,omitempty"`
	Title       string `json:"title" example:"Marinar"`
	Description string `json:"description"`
}

// RecipeCreateRequest is the body of POST /recipes
// swagger:model RecipeCreateRequest
type RecipeCreateRequest struct {
	Title       string            `json:"title" example:"Tacos al pastor"`
	Description string            `json:"description"`
	ImageRef    string            `json:"image_ref"`
	Ingredients []IngredientInput `json:"ingredients"`
	Steps       []StepInput       `json:"steps"`
}
