package gui

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/kikiluvv/framestack/internal/output"
)

// maxWindow bounds the initial window size for very wide stacks
const maxWindow = 1600

var _ output.Viewer = (*WindowViewer)(nil)

// WindowViewer shows the finished image in a native window and blocks until
// the window is closed. It must run on the main goroutine.
type WindowViewer struct {
	logger zerolog.Logger
	title  string
}

// NewWindowViewer creates a window viewer with the given window title
func NewWindowViewer(logger zerolog.Logger, title string) *WindowViewer {
	return &WindowViewer{
		logger: logger.With().Str("component", "gui").Logger(),
		title:  title,
	}
}

// Show opens the preview window
func (v *WindowViewer) Show(img image.Image) error {
	a := app.NewWithID("io.github.kikiluvv.framestack")
	w := a.NewWindow(v.title)

	b := img.Bounds()
	view := canvas.NewImageFromImage(previewImage(img))
	view.FillMode = canvas.ImageFillContain
	view.ScaleMode = canvas.ImageScaleSmooth
	view.SetMinSize(fyne.NewSize(float32(b.Dx())/4, float32(b.Dy())/4))

	status := widget.NewLabel(fmt.Sprintf("%d x %d", b.Dx(), b.Dy()))

	saveButton := widget.NewButton("Save As...", func() {
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if wc == nil {
				return
			}
			defer wc.Close()

			if err := output.Encode(wc, img); err != nil {
				dialog.ShowError(err, w)
				return
			}
			v.logger.Info().Str("uri", wc.URI().String()).Msg("saved preview")
			status.SetText("Saved " + wc.URI().Name())
		}, w)
		fd.SetFileName("framestack.png")
		fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
		fd.Show()
	})

	closeButton := widget.NewButton("Close", func() {
		w.Close()
	})

	w.SetContent(container.NewBorder(
		nil,
		container.NewHBox(status, saveButton, closeButton),
		nil, nil,
		view,
	))
	w.Resize(fyne.NewSize(float32(min(b.Dx(), maxWindow)), float32(min(b.Dy(), maxWindow))+48))

	v.logger.Debug().Int("width", b.Dx()).Int("height", b.Dy()).Msg("opening preview window")
	w.ShowAndRun()
	return nil
}

// previewImage shrinks images larger than the window bound for display.
// Saving always uses the full resolution image.
func previewImage(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWindow && b.Dy() <= maxWindow {
		return img
	}
	return resize.Thumbnail(maxWindow, maxWindow, img, resize.Lanczos3)
}
