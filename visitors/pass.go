package visitors

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"gatepass/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

func hmacSecret() []byte {
	if s := os.Getenv("PASS_HMAC_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("gatepass_dev_pass_secret")
}

// passPayload returns a signed payload: visitID|contact|timestamp|signature.
// The guard's scanner verifies the signature before honoring the pass.
func passPayload(visitID, contact string) string {
	data := fmt.Sprintf("%s|%s|%d", visitID, contact, time.Now().Unix())
	h := hmac.New(sha256.New, hmacSecret())
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// PrintPass renders a visitor gate pass as a PDF with a signed QR code.
func (h *Handlers) PrintPass(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	v, err := h.Engine.Visits().FindByID(r.Context(), ps.ByName("id"))
	if err != nil {
		respondEngineError(w, err)
		return
	}

	qrPNG, err := qrcode.Encode(passPayload(v.VisitID, v.ContactNumber), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Visitor Gate Pass")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", v.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Contact: %s", v.ContactNumber))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Office: %s", v.Office))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Purpose: %s", v.Purpose))
	pdf.Ln(8)
	if sched, ok := v.ScheduledAt(); ok {
		pdf.Cell(0, 10, fmt.Sprintf("Scheduled: %s", sched.Format("2006-01-02 15:04")))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=pass-"+v.VisitID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
