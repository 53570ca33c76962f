package files

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif" // needed to decode gif
	_ "image/jpeg" // needed to decode jpeg
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"visor/internal/domain"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/webp"
)

const (
	coverWidth  = 18.0 // in millimeters
	lineHeight  = 6.0
	rowSpacing  = 4.0
	pageMargin  = 15.0
	textIndent  = coverWidth + 5
	headingSize = 16
)

func IsValidLocation(location string) error {
	if _, err := os.Stat(location); err != nil {
		return err
	}

	return nil
}

// NormalizeImage converts webp images to png next to the original, since
// the pdf writer only embeds jpeg, png and gif. Other files are returned as is.
func NormalizeImage(imgPath string) (string, error) {
	if !strings.EqualFold(filepath.Ext(imgPath), ".webp") {
		return imgPath, nil
	}

	pngPath := strings.TrimSuffix(imgPath, filepath.Ext(imgPath)) + ".png"
	if _, err := os.Stat(pngPath); err == nil {
		return pngPath, nil
	}

	in, err := os.Open(imgPath)
	if err != nil {
		return "", err
	}
	defer in.Close()

	img, err := webp.Decode(bufio.NewReader(in))
	if err != nil {
		return "", fmt.Errorf("could not decode webp %s: %w", imgPath, err)
	}

	out, err := os.Create(pngPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	writeBuf := bufio.NewWriter(out)
	if err := png.Encode(writeBuf, img); err != nil {
		return "", err
	}

	return pngPath, writeBuf.Flush()
}

// CreateLibraryPDF writes a catalog of books grouped by list to pdfPath.
// covers maps a book url to a local cover image; books without a usable
// cover are listed without one. name renders the entry title, nil uses the
// book title.
func CreateLibraryPDF(books []domain.Book, covers map[string]string, name func(domain.Book) string, pdfPath string) error {
	if name == nil {
		name = func(b domain.Book) string { return b.Title }
	}

	err := os.MkdirAll(filepath.Dir(pdfPath), os.ModePerm)
	if err != nil {
		return err
	}

	pdf := fpdf.New(fpdf.OrientationPortrait, fpdf.UnitMillimeter, "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle("Library", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()

	pdf.AddPage()

	listName := ""
	first := true

	for _, book := range books {
		if first || book.ListName != listName {
			listName = book.ListName
			first = false

			if pdf.GetY()+2*lineHeight > pageHeight-pageMargin {
				pdf.AddPage()
			}

			pdf.SetFont("Helvetica", "B", headingSize)
			pdf.CellFormat(0, lineHeight*1.5, tr(headingOf(listName)), "B", 1, "L", false, 0, "")
			pdf.Ln(rowSpacing)
		}

		coverPath, coverHeight := usableCover(covers[book.URL])

		rowHeight := max(coverHeight, 3*lineHeight)
		if pdf.GetY()+rowHeight > pageHeight-pageMargin {
			pdf.AddPage()
		}

		x, y := pdf.GetXY()

		if coverPath != "" {
			pdf.ImageOptions(coverPath, x, y, coverWidth, coverHeight, false, fpdf.ImageOptions{ReadDpi: true}, 0, "")
		}

		pdf.SetXY(x+textIndent, y)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, lineHeight, tr(name(book)), "", 2, "L", false, 0, book.URL)

		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, lineHeight, fmt.Sprintf("Chapters: %d   Unread: %d", len(book.Chapters), book.UnreadChapters()), "", 2, "L", false, 0, "")

		if langs := book.Languages(); len(langs) > 0 {
			pdf.CellFormat(0, lineHeight, "Languages: "+strings.Join(langs, ", "), "", 2, "L", false, 0, "")
		}

		pdf.SetXY(x, y+rowHeight+rowSpacing)
	}

	if len(books) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, lineHeight, "No books synced yet.", "", 1, "L", false, 0, "")
	}

	return pdf.OutputFileAndClose(pdfPath)
}

func headingOf(listName string) string {
	if listName == "" {
		return "Unlisted"
	}
	return listName
}

// usableCover checks that the image decodes before handing it to the pdf
// writer, whose errors are sticky and would abort the whole document.
func usableCover(imgPath string) (string, float64) {
	if imgPath == "" {
		return "", 0
	}

	normalized, err := NormalizeImage(imgPath)
	if err != nil {
		return "", 0
	}

	imgFile, err := os.Open(normalized)
	if err != nil {
		return "", 0
	}
	defer imgFile.Close()

	img, _, err := image.DecodeConfig(imgFile)
	if err != nil || img.Width == 0 {
		return "", 0
	}

	return normalized, coverWidth * float64(img.Height) / float64(img.Width)
}
