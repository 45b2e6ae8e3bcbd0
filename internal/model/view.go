package model

// ModelAndView is what page handlers return. A non-empty Redirect means no
// view is rendered and Model is ignored.
type ModelAndView struct {
	View     string
	Model    map[string]any
	Redirect string
}

func NewView(name string) *ModelAndView {
	return &ModelAndView{View: name, Model: map[string]any{}}
}

func RedirectTo(location string) *ModelAndView {
	return &ModelAndView{Redirect: location}
}

func (mv *ModelAndView) HasView() bool {
	return mv != nil && mv.Redirect == ""
}

func (mv *ModelAndView) AddObject(key string, value any) *ModelAndView {
	if mv.Model == nil {
		mv.Model = map[string]any{}
	}
	mv.Model[key] = value
	return mv
}

type ViewResponse struct {
	View  string         `json:"view"`
	Model map[string]any `json:"model"`
}
