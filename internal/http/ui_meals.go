package httpx

import (
	"net/http"
	"strings"

	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/http/ui/viewmodel"
	"github.com/target/calorie-tracker/internal/http/validation"
	"github.com/target/calorie-tracker/internal/mealview"
)

// Fragment templates swapped by the meals page.
const (
	mealsSectionTemplate = "meals-section"
	mealFormTemplate     = "meal-form"
	mealFormSlotID       = "meal-form-slot"

	maxFoodNameLen     = 255
	maxCaloriesTextLen = 12
)

//nolint:gochecknoglobals // page metadata shared by the meals handlers
var mealsMeta = PageMeta{Title: appName + " - Meals", CurrentPage: PageMeals}

// viewFor returns the meal view of the authenticated caller. Call only after gate.
func (h *UIHandlers) viewFor(r *http.Request) *mealview.View {
	sess := GetSessionFromContext(r.Context())
	owner, _ := OwnerFromContext(r.Context())
	return h.Views.Get(sess.ID, owner)
}

func (h *UIHandlers) mealsSection(r *http.Request, view *mealview.View, form viewmodel.MealForm) viewmodel.MealsSection {
	return viewmodel.MealsSection{
		Meals:     view.Meals(),
		Total:     view.Total(),
		Today:     h.today(),
		Form:      form,
		InFlight:  view.InFlight(),
		CSRFToken: GetCSRFToken(r),
	}
}

// mealsResponse is one outcome of a meals page action.
type mealsResponse struct {
	Form    viewmodel.MealForm
	Status  int    // 0 means 200
	Message string // shown as a blocking alert (HTMX) or an inline banner
}

// renderMeals writes the meals section for HTMX requests and the whole page otherwise.
func (h *UIHandlers) renderMeals(w http.ResponseWriter, r *http.Request, view *mealview.View, resp mealsResponse) {
	section := h.mealsSection(r, view, resp.Form)
	if WantsPartial(r) {
		HTMX(w).Alert(resp.Message)
		h.renderFragment(w, r, RenderOptions{Template: mealsSectionTemplate, Data: section, Status: resp.Status})
		return
	}

	data := NewTemplateData(r, mealsMeta).
		WithMealsSection(section).
		WithError(resp.Message).
		Build()
	h.renderPage(w, r, pageRender{Data: data, Status: resp.Status})
}

// Meals serves the meal list, loading it from the store on every visit.
// A failed load is logged by the view and the stale list is shown without an alert.
func (h *UIHandlers) Meals(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r, mealsMeta) {
		return
	}
	view := h.viewFor(r)
	if err := view.Load(r.Context()); apperrors.IsConflict(err) {
		h.logger().DebugContext(r.Context(), "meal list reload skipped, change in progress")
	}
	h.renderMeals(w, r, view, mealsResponse{Form: viewmodel.NewMealForm(h.today())})
}

// MealNew opens the add-meal overlay.
func (h *UIHandlers) MealNew(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r, mealsMeta) {
		return
	}
	view := h.viewFor(r)
	form := viewmodel.NewMealForm(h.today())
	form.Open = true

	if WantsPartial(r) && HXTarget(r) == mealFormSlotID {
		h.renderFragment(w, r, RenderOptions{Template: mealFormTemplate, Data: h.mealsSection(r, view, form)})
		return
	}
	if !view.Loaded() {
		_ = view.Load(r.Context())
	}
	h.renderMeals(w, r, view, mealsResponse{Form: form})
}

// MealCreate handles the add-meal form.
func (h *UIHandlers) MealCreate(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r, mealsMeta) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	view := h.viewFor(r)
	draft := model.MealDraft{
		FoodName:     r.PostFormValue("food_name"),
		CaloriesText: r.PostFormValue("calories"),
		Date:         strings.TrimSpace(r.PostFormValue("date")),
	}

	required := validation.New().
		Validate("food_name", draft.FoodName, validation.Required("Food name", maxFoodNameLen)).
		Validate("calories", draft.CaloriesText, validation.Required("Calories", maxCaloriesTextLen))
	if strings.TrimSpace(draft.FoodName) == "" || strings.TrimSpace(draft.CaloriesText) == "" {
		h.renderMeals(w, r, view, mealsResponse{
			Form:    viewmodel.FromDraft(draft, required.Errors()),
			Status:  http.StatusUnprocessableEntity,
			Message: msgFillAllFields,
		})
		return
	}

	fv := required.
		Validate("calories", draft.CaloriesText, validation.Parsed(func(s string) error {
			_, err := model.ParseCalories(s)
			return err
		})).
		Validate("date", draft.Date, validation.DateISO("Date"))
	if !fv.Valid() {
		errs := fv.Errors()
		h.renderMeals(w, r, view, mealsResponse{
			Form:    viewmodel.FromDraft(draft, errs),
			Status:  http.StatusUnprocessableEntity,
			Message: firstFieldError(errs, "food_name", "calories", "date"),
		})
		return
	}

	calories, _ := model.ParseCalories(draft.CaloriesText)
	_, err := view.Add(r.Context(), model.CreateMealRequest{
		FoodName: draft.FoodName,
		Calories: calories,
		Date:     draft.Date,
	})
	switch {
	case err == nil:
		h.mealChanged(w, r, view, msgMealAdded)
	case apperrors.IsConflict(err):
		h.respondBusy(w, r, view, viewmodel.FromDraft(draft, nil))
	case apperrors.IsValidation(err):
		errs := map[string]string{}
		if field := apperrors.GetField(err); field != "" {
			errs[field] = apperrors.GetMessage(err, "Invalid value")
		}
		h.renderMeals(w, r, view, mealsResponse{
			Form:    viewmodel.FromDraft(draft, errs),
			Status:  http.StatusUnprocessableEntity,
			Message: apperrors.GetMessage(err, msgAddFailed),
		})
	default:
		h.logger().ErrorContext(r.Context(), "add meal failed", "error", err)
		h.renderMeals(w, r, view, mealsResponse{
			Form:    viewmodel.FromDraft(draft, nil),
			Status:  storeFailureStatus(r),
			Message: msgAddFailed,
		})
	}
}

// MealDelete removes one meal. The browser confirms before posting.
func (h *UIHandlers) MealDelete(w http.ResponseWriter, r *http.Request) {
	if !h.gate(w, r, mealsMeta) {
		return
	}
	view := h.viewFor(r)
	id := r.PathValue("id")
	if !view.Loaded() {
		_ = view.Load(r.Context())
	}

	err := view.Delete(r.Context(), id)
	switch {
	case err == nil:
		h.mealChanged(w, r, view, msgMealDeleted)
	case apperrors.IsConflict(err):
		h.respondBusy(w, r, view, viewmodel.NewMealForm(h.today()))
	default:
		h.logger().ErrorContext(r.Context(), "delete meal failed", "meal_id", id, "error", err)
		if WantsPartial(r) {
			HTMX(w).Alert(msgDeleteFailed).Reswap("none")
			w.WriteHeader(http.StatusOK)
			return
		}
		h.renderMeals(w, r, view, mealsResponse{
			Form:    viewmodel.NewMealForm(h.today()),
			Status:  StatusForError(err),
			Message: msgDeleteFailed,
		})
	}
}

// mealChanged answers a successful mutation: the refreshed section with the
// overlay closed for HTMX, a redirect back to the list otherwise.
func (h *UIHandlers) mealChanged(w http.ResponseWriter, r *http.Request, view *mealview.View, toast string) {
	if !WantsPartial(r) {
		http.Redirect(w, r, mealsPath, http.StatusSeeOther)
		return
	}
	HTMX(w).Toast(toast, "success")
	h.renderFragment(w, r, RenderOptions{
		Template: mealsSectionTemplate,
		Data:     h.mealsSection(r, view, viewmodel.NewMealForm(h.today())),
	})
}

// respondBusy reports a rejected concurrent mutation. HTMX clients keep their page as is.
func (h *UIHandlers) respondBusy(w http.ResponseWriter, r *http.Request, view *mealview.View, form viewmodel.MealForm) {
	if WantsPartial(r) {
		HTMX(w).Alert(msgBusy).Reswap("none")
		w.WriteHeader(http.StatusConflict)
		return
	}
	h.renderMeals(w, r, view, mealsResponse{Form: form, Status: http.StatusConflict, Message: msgBusy})
}

// storeFailureStatus follows the HTMX convention of 200 for re-rendered error
// fragments; full page loads report the upstream failure.
func storeFailureStatus(r *http.Request) int {
	if WantsPartial(r) {
		return http.StatusOK
	}
	return http.StatusBadGateway
}

func firstFieldError(errs map[string]string, order ...string) string {
	for _, f := range order {
		if msg := errs[f]; msg != "" {
			return msg
		}
	}
	return ""
}
