package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/dashboard/internal/action"
)

// multipartMemory is how much of a multipart body is buffered before gin
// spills file parts to disk.
const multipartMemory = 8 << 20

// formOverhead is the room allowed above the upload size limit for text
// fields and multipart framing. An image a little over the limit still
// reaches validation and gets its size message.
const formOverhead = 1 << 20

// readForm turns a urlencoded or multipart submission into an action.Form.
// File parts are read up to one byte past the upload limit so oversize
// files still reach validation.
func (s *Server) readForm(c *gin.Context) (action.Form, error) {
	form := action.Form{
		UserAgent: strings.TrimSpace(c.Request.UserAgent()),
		IPAddress: strings.TrimSpace(c.ClientIP()),
	}

	limit := s.uploads.Get().MaxBytes + 1
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+formOverhead)

	var err error
	if strings.HasPrefix(c.ContentType(), gin.MIMEMultipartPOSTForm) {
		err = c.Request.ParseMultipartForm(multipartMemory)
	} else {
		err = c.Request.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return action.Form{}, ErrPayloadTooLarge
		}
		return action.Form{}, ErrInvalidRequest
	}
	form.Values = c.Request.PostForm

	if c.Request.MultipartForm == nil {
		return form, nil
	}

	form.Files = make(map[string]*action.FileInput, len(c.Request.MultipartForm.File))
	for name, headers := range c.Request.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		header := headers[0]
		file, err := header.Open()
		if err != nil {
			return action.Form{}, ErrInvalidRequest
		}
		data, err := io.ReadAll(io.LimitReader(file, limit))
		_ = file.Close()
		if err != nil {
			return action.Form{}, ErrInvalidRequest
		}
		form.Files[name] = &action.FileInput{Filename: header.Filename, Data: data}
	}
	return form, nil
}

// renderResult writes an orchestrator outcome: redirects become 303 with a
// Location header, failures become 422 with the form state.
func renderResult(c *gin.Context, result action.Result) {
	switch res := result.(type) {
	case action.Redirect:
		c.Redirect(http.StatusSeeOther, res.Target)
	case action.Failure:
		c.JSON(http.StatusUnprocessableEntity, res.State)
	default:
		AbortWithError(c, errors.New("unknown action result"))
	}
}
