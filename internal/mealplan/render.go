package mealplan

// MealView is one planned title inside a DayView
type MealView struct {
	Title  string       `json:"title"`
	Index  int          `json:"index"`
	Remove func() error `json:"-"`
}

// DayView is the rendering-ready content of one planner column
type DayView struct {
	Name  string     `json:"name"`
	Date  string     `json:"date"`
	Meals []MealView `json:"meals"`
	Empty bool       `json:"empty"`
}

// Placeholder is shown for days without planned meals
const Placeholder = "Nothing planned"

// Render builds the seven day views of the current week from plans.
// Dates outside the week are ignored. Each meal carries its own removal handler.
func (p *Planner) Render(plans Plans) []DayView {
	dates := p.CurrentWeekDates()
	views := make([]DayView, 0, len(dates))
	for i, date := range dates {
		meals := plans[date]
		view := DayView{
			Name:  DayNames[i],
			Date:  date,
			Meals: make([]MealView, 0, len(meals)),
			Empty: len(meals) == 0,
		}
		for j, title := range meals {
			date, index := date, j
			view.Meals = append(view.Meals, MealView{
				Title:  title,
				Index:  index,
				Remove: func() error { return p.RemoveMeal(date, index) },
			})
		}
		views = append(views, view)
	}
	return views
}

// Week loads the stored plan and renders the current week
func (p *Planner) Week() ([]DayView, error) {
	plans, err := p.Load()
	if err != nil {
		return nil, err
	}
	return p.Render(plans), nil
}
