package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const leftPanelWidth = 220

// editorCallbacks are the actions the side panel can trigger.
type editorCallbacks struct {
	onTool     func(Tool)
	onLayer    func(layer string)
	onRaiseTop func(delta float64)
	onRotate   func(degrees float64)
	onSave     func(name string)
	onUndo     func()
	onDelete   func()
}

// editorUI holds the widgets the editor updates after building the panel.
type editorUI struct {
	ui        *ebitenui.UI
	panel     *widget.Container
	tools     *widget.RadioGroup
	toolBtns  []*widget.Button
	layers    *widget.RadioGroup
	layerBtns []*widget.Button
	fileInput *widget.TextInput
	info      *widget.Text
}

func buildEditorUI(cb editorCallbacks, initialTool Tool, initialLayer, fileName string) *editorUI {
	ui := &ebitenui.UI{}

	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic("Failed to load font: " + err.Error())
	}
	var fontFace text.Face = &text.GoTextFace{Source: s, Size: 14}
	ui.PrimaryTheme = newEditorTheme(&fontFace)
	theme := ui.PrimaryTheme

	labelColor := &widget.LabelColor{Idle: color.White, Disabled: color.Gray{Y: 140}}
	btnText := &widget.ButtonTextColor{
		Idle:     color.Black,
		Hover:    color.Black,
		Pressed:  color.RGBA{0, 0, 200, 255},
		Disabled: color.Gray{Y: 128},
	}

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(theme.PanelTheme.BackgroundImage),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(6),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 10, Bottom: 10, Left: 10, Right: 10}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(leftPanelWidth, 0),
		),
	)
	e := &editorUI{ui: ui, panel: panel}

	addLabel := func(s string) {
		panel.AddChild(widget.NewLabel(widget.LabelOpts.Text(s, &fontFace, labelColor)))
	}
	button := func(label string, toggle bool, onClick func()) *widget.Button {
		opts := []widget.ButtonOpt{
			widget.ButtonOpts.Image(theme.ButtonTheme.Image),
			widget.ButtonOpts.Text(label, &fontFace, btnText),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize(leftPanelWidth-20, 28)),
		}
		if toggle {
			opts = append(opts, widget.ButtonOpts.ToggleMode())
		}
		if onClick != nil {
			opts = append(opts, widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) { onClick() }))
		}
		return widget.NewButton(opts...)
	}
	row := func(children ...widget.PreferredSizeLocateableWidget) {
		r := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(6),
		)))
		for _, c := range children {
			r.AddChild(c)
		}
		panel.AddChild(r)
	}
	half := func(label string, onClick func()) *widget.Button {
		return widget.NewButton(
			widget.ButtonOpts.Image(theme.ButtonTheme.Image),
			widget.ButtonOpts.Text(label, &fontFace, btnText),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.MinSize((leftPanelWidth-26)/2, 28)),
			widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) { onClick() }),
		)
	}

	addLabel("Tool")
	for _, t := range []Tool{ToolSelect, ToolBox, ToolSpawn} {
		btn := button(t.String(), true, nil)
		e.toolBtns = append(e.toolBtns, btn)
		panel.AddChild(btn)
	}
	e.tools = radioGroup(e.toolBtns, func(idx int) {
		if cb.onTool != nil {
			cb.onTool(Tool(idx))
		}
	})
	if idx := int(initialTool); idx >= 0 && idx < len(e.toolBtns) {
		e.tools.SetActive(e.toolBtns[idx])
	}

	addLabel("Layer")
	for _, name := range layerNames {
		btn := button(name, true, nil)
		e.layerBtns = append(e.layerBtns, btn)
		panel.AddChild(btn)
	}
	e.layers = radioGroup(e.layerBtns, func(idx int) {
		if cb.onLayer != nil {
			cb.onLayer(layerNames[idx])
		}
	})
	e.SetLayer(initialLayer)

	addLabel("Selection")
	row(half("Top -", func() { cb.onRaiseTop(-0.25) }), half("Top +", func() { cb.onRaiseTop(0.25) }))
	row(half("Yaw -", func() { cb.onRotate(-15) }), half("Yaw +", func() { cb.onRotate(15) }))
	row(half("Undo", cb.onUndo), half("Delete", cb.onDelete))

	addLabel("File")
	e.fileInput = widget.NewTextInput(
		widget.TextInputOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(leftPanelWidth-20, 28),
		),
		widget.TextInputOpts.Image(&widget.TextInputImage{
			Idle:     solidNineSlice(color.RGBA{245, 245, 245, 255}),
			Disabled: solidNineSlice(color.RGBA{200, 200, 200, 255}),
		}),
		widget.TextInputOpts.Color(&widget.TextInputColor{
			Idle:     color.Black,
			Disabled: color.Gray{Y: 120},
			Caret:    color.Black,
		}),
		widget.TextInputOpts.Face(&fontFace),
	)
	e.fileInput.SetText(fileName)
	panel.AddChild(e.fileInput)
	panel.AddChild(button("Save", false, func() { cb.onSave(e.fileInput.GetText()) }))

	e.info = widget.NewText(widget.TextOpts.Text("", &fontFace, color.White))
	panel.AddChild(e.info)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	panel.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionStart,
		VerticalPosition:   widget.AnchorLayoutPositionStart,
		StretchVertical:    true,
	}
	root.AddChild(panel)
	ui.Container = root
	return e
}

func radioGroup(buttons []*widget.Button, onChange func(idx int)) *widget.RadioGroup {
	elements := make([]widget.RadioGroupElement, 0, len(buttons))
	for _, b := range buttons {
		elements = append(elements, b)
	}
	return widget.NewRadioGroup(
		widget.RadioGroupOpts.Elements(elements...),
		widget.RadioGroupOpts.ChangedHandler(func(args *widget.RadioGroupChangedEventArgs) {
			for idx, b := range buttons {
				if args.Active == b {
					onChange(idx)
					return
				}
			}
		}),
	)
}

// SetTool reflects a keyboard tool change in the panel.
func (e *editorUI) SetTool(t Tool) {
	if idx := int(t); idx >= 0 && idx < len(e.toolBtns) && e.tools.Active() != e.toolBtns[idx] {
		e.tools.SetActive(e.toolBtns[idx])
	}
}

func (e *editorUI) SetLayer(layer string) {
	for i, name := range layerNames {
		if name == layer && e.layers.Active() != e.layerBtns[i] {
			e.layers.SetActive(e.layerBtns[i])
		}
	}
}

func (e *editorUI) SetInfo(format string, args ...any) {
	e.info.Label = fmt.Sprintf(format, args...)
}

// Bounds is the panel's screen rectangle.
func (e *editorUI) Bounds() image.Rectangle {
	return e.panel.GetWidget().Rect
}
