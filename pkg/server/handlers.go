package server

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/artfit/artfit/pkg/artwork"
	"github.com/artfit/artfit/pkg/assist"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations"
	"github.com/artfit/artfit/pkg/preview"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/session"
	"github.com/artfit/artfit/pkg/tracker"
)

type ctxKey int

const sessionKey ctxKey = 0

type createRequest struct {
	Region    *region.Raw     `json:"region,omitempty"`
	ProductID region.ID       `json:"productId,omitempty"`
	View      string          `json:"view,omitempty"`
	Artwork   *artworkRequest `json:"artwork,omitempty"`
}

type artworkRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	URL    string  `json:"url,omitempty"`
}

type manipulateRequest struct {
	Kind string `json:"kind"`
	tracker.Geometry
}

type sessionResponse struct {
	ID        string           `json:"id"`
	View      string           `json:"view,omitempty"`
	ProductID region.ID        `json:"productId,omitempty"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Snapshot  tracker.Snapshot `json:"snapshot"`
	Config    *artwork.Config  `json:"artworkConfig,omitempty"`
	Warnings  []string         `json:"warnings,omitempty"`
}

func respondSession(sess *session.Session) sessionResponse {
	resp := sessionResponse{
		ID:        sess.ID(),
		View:      sess.View(),
		ProductID: sess.ProductID(),
		ExpiresAt: sess.ExpiresAt(),
		Snapshot:  sess.Snapshot(),
		Warnings:  sess.Warnings(),
	}
	if resp.Snapshot.Transform != nil {
		if cfg, err := sess.Config(); err == nil {
			resp.Config = &cfg
		}
	}
	return resp
}

func (s *Server) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey).(*session.Session)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Region == nil && req.ProductID == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "region or productId is required"))
		return
	}

	ctx := r.Context()
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.initSession(ctx, sess, req); err != nil {
		_ = s.sessions.Delete(ctx, sess.ID())
		s.writeError(w, r, err)
		return
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("session created", "session", sess.ID(), "view", sess.View())
	writeJSON(w, http.StatusCreated, respondSession(sess))
}

func (s *Server) initSession(ctx context.Context, sess *session.Session, req createRequest) error {
	if req.ProductID != "" {
		if s.catalog == nil {
			return errors.New(errors.ErrCodeUnsupported, "no product catalog configured; send a region instead")
		}
		p, err := s.catalog.GetProduct(ctx, req.ProductID, false)
		if err != nil {
			return errors.Wrap(integrations.ErrorCode(err), err, "load product %s", req.ProductID)
		}
		if _, err := sess.AttachProduct(p, req.View); err != nil {
			return err
		}
	} else {
		reg, err := region.Resolve(*req.Region)
		if err != nil {
			return err
		}
		if err := sess.SetRegion(reg, req.View); err != nil {
			return err
		}
	}
	if a := req.Artwork; a != nil {
		return sess.PlaceArtwork(a.Width, a.Height, a.URL)
	}
	return nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, respondSession(sessionFrom(r)))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), sessionFrom(r).ID()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleManipulate(w http.ResponseWriter, r *http.Request) {
	var req manipulateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	kind, err := tracker.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := sessionFrom(r)
	if _, err := sess.Manipulate(kind, req.Geometry); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.saveAndRespond(w, r, sess)
}

func (s *Server) handleAssist(w http.ResponseWriter, r *http.Request) {
	op, err := assist.ParseOp(chi.URLParam(r, "op"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess := sessionFrom(r)
	if _, err := sess.Apply(op); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.saveAndRespond(w, r, sess)
}

func (s *Server) saveAndRespond(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, respondSession(sess))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+(1<<20))
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid multipart upload"))
		return
	}
	img, err := formImage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.export
	if v := r.FormValue("format"); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Format = f
	}
	if v := r.FormValue("interpolation"); v != "" {
		opts.Interpolation = v
	}
	opts.Logger = s.logger

	sess := sessionFrom(r)
	res, err := sess.Export(r.Context(), img, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("exported print file",
		"session", sess.ID(),
		"format", res.Format,
		"pixels", fmt.Sprintf("%dx%d", res.Width, res.Height),
		"bytes", len(res.Data))

	h := w.Header()
	h.Set("Content-Type", res.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename(time.Now())))
	h.Set("X-Print-Width", strconv.Itoa(res.PrintWidth))
	h.Set("X-Print-Height", strconv.Itoa(res.PrintHeight))
	h.Set("X-Export-Multiplier", strconv.FormatFloat(res.Multiplier, 'f', -1, 64))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// formImage decodes the "file" part. A request without one exports the
// session's loaded artwork, if any.
func formImage(r *http.Request) (image.Image, error) {
	f, _, err := r.FormFile("file")
	if stderrors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoadFailed, err, "read upload")
	}
	img, _, err := export.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	snap, art, bg := sessionFrom(r).Layers()
	if !snap.Region.Usable() {
		s.writeError(w, r, errors.New(errors.ErrCodeNoPrintRegion, "session has no print region"))
		return
	}
	var buf bytes.Buffer
	err := preview.RenderPNG(&buf, preview.Scene{
		Region:    snap.Region,
		Transform: snap.Transform,
		Bounds:    snap.Bounds,
		Artwork:   art,
		Product:   bg,
	}, s.preview)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}
