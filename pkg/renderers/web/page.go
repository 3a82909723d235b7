package web

import "github.com/goliatone/go-formdispatch/pkg/binding"

type fieldView struct {
	Name      string
	Label     string
	Help      string
	InputType string
	Step      string
	Options   []string
	Required  bool
}

type formView struct {
	ID      string
	Title   string
	Click   bool
	Enctype string
	Region  string
	Fields  []fieldView

	HasResult  bool
	ResultKind string
	ResultText string
}

func (h *Host) pageData() map[string]any {
	h.mu.RLock()
	forms := make([]formView, 0, len(h.order))
	for _, id := range h.order {
		el := h.elements[id]
		if el.handler == nil {
			continue
		}
		forms = append(forms, newFormView(el.binding))
	}
	h.mu.RUnlock()

	for i := range forms {
		if view, ok := h.surface.Region(forms[i].Region); ok {
			forms[i].HasResult = true
			forms[i].ResultKind = view.Kind
			forms[i].ResultText = view.Text
		}
	}

	data := map[string]any{
		"title":    h.title,
		"forms":    forms,
		"css_vars": cssVarsStyle(h.theme.CSSVars),
		"theme":    h.theme.Theme,
		"variant":  h.theme.Variant,
		"ws_path":  wsPath,
	}
	if banner, ok := h.surface.Banner(); ok {
		data["banner_visible"] = true
		data["banner_kind"] = banner.Kind
		data["banner_text"] = banner.Text
	}
	return data
}

func newFormView(fb binding.FormBinding) formView {
	view := formView{
		ID:      fb.ID,
		Title:   fb.DisplayTitle(),
		Click:   fb.Trigger == binding.TriggerClick,
		Enctype: "application/x-www-form-urlencoded",
		Region:  fb.ResultRegion,
	}
	for _, field := range fb.Fields {
		fv := fieldView{
			Name:     field.Name,
			Label:    field.DisplayLabel(),
			Help:     field.Help,
			Options:  field.Options,
			Required: field.Required,
		}
		switch field.Kind {
		case binding.FieldInt:
			fv.InputType, fv.Step = "number", "1"
		case binding.FieldFloat:
			fv.InputType, fv.Step = "number", "any"
		case binding.FieldFile:
			fv.InputType = "file"
			view.Enctype = "multipart/form-data"
		default:
			fv.InputType = "text"
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}
