package httpx

import (
	"net/http"

	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/mealview"
)

// MealQuerier evaluates the optional ?q= expression of GET /api/meals.
type MealQuerier interface {
	Apply(expr string, meals []model.Meal) (any, error)
}

// MealAPIHandlers serves the JSON meal endpoints. Every route sits behind RequireSessionJSON.
type MealAPIHandlers struct {
	Views MealViews
	Query MealQuerier // optional; ?q= is rejected when nil
}

type mealListResponse struct {
	Meals         []model.Meal `json:"meals"`
	TotalCalories int          `json:"total_calories"`
	Result        any          `json:"result,omitempty"`
}

func (h *MealAPIHandlers) view(r *http.Request) *mealview.View {
	sess := GetSessionFromContext(r.Context())
	owner, _ := OwnerFromContext(r.Context())
	return h.Views.Get(sess.ID, owner)
}

// List returns the caller's meals, newest first, with the loaded total.
// GET /api/meals?q=<jmespath>.
func (h *MealAPIHandlers) List(w http.ResponseWriter, r *http.Request) {
	view := h.view(r)
	if err := view.Load(r.Context()); err != nil {
		WriteAppError(w, err)
		return
	}

	meals := view.Meals()
	resp := mealListResponse{Meals: meals, TotalCalories: model.TotalCalories(meals)}
	if expr := r.URL.Query().Get("q"); expr != "" {
		if h.Query == nil {
			WriteAppError(w, apperrors.ValidationField("q", "Query expressions are not supported."))
			return
		}
		out, err := h.Query.Apply(expr, meals)
		if err != nil {
			WriteAppError(w, err)
			return
		}
		resp.Result = out
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Create adds a meal from a JSON body.
// POST /api/meals.
func (h *MealAPIHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateMealRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	meal, err := h.view(r).Add(r.Context(), req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, meal)
}

// Delete removes a meal by id.
// DELETE /api/meals/{id}.
func (h *MealAPIHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	view := h.view(r)
	if !view.Loaded() {
		if err := view.Load(r.Context()); err != nil {
			WriteAppError(w, err)
			return
		}
	}
	if err := view.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
