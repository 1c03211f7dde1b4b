package models

// Prediction is the classifier output: the winning label, its confidence and the
// percentage assigned to every label. Percentages are expected to sum to 100.
type Prediction struct {
	Prakriti      string             `json:"prakriti"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// PrakritiInfo describes the predicted constitution
type PrakritiInfo struct {
	Description     string   `json:"description"`
	Characteristics []string `json:"characteristics"`
}

// Meal is one slot of the daily meal plan
type Meal struct {
	Food     string  `json:"food"`
	Calories float64 `json:"calories"`
}

// DietRecommendation carries the diet content returned with a prediction
type DietRecommendation struct {
	Guidelines   string          `json:"guidelines"`
	FoodsToFavor []string        `json:"foods_to_favor"`
	FoodsToAvoid []string        `json:"foods_to_avoid"`
	MealPlan     map[string]Meal `json:"meal_plan"`
}

// TotalCalories sums the calories of every meal plan slot
func (d DietRecommendation) TotalCalories() float64 {
	var total float64
	for _, meal := range d.MealPlan {
		total += meal.Calories
	}
	return total
}

// PredictionResponse is the JSON body returned by the prediction endpoint.
// ImageURL is never sent by the service; it holds the local preview of the
// uploaded photo once the response is accepted.
type PredictionResponse struct {
	Success            bool               `json:"success"`
	Error              string             `json:"error,omitempty"`
	Prediction         Prediction         `json:"prediction"`
	PrakritiInfo       PrakritiInfo       `json:"prakriti_info"`
	DietRecommendation DietRecommendation `json:"diet_recommendation"`
	ImageURL           string             `json:"image_url,omitempty"`
}

// WithImageURL returns a copy of the response carrying the preview reference
func (r PredictionResponse) WithImageURL(imageURL string) PredictionResponse {
	r.ImageURL = imageURL
	return r
}
