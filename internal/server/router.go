package server

import (
	"errors"
	"fmt"

	"board/internal/models"
	"board/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Endpoint names a route target of the board.
type Endpoint int

const (
	EndpointIndex Endpoint = iota
	EndpointNewPost
	EndpointPostDetail
)

func (e Endpoint) String() string {
	switch e {
	case EndpointIndex:
		return "index"
	case EndpointNewPost:
		return "new_post"
	case EndpointPostDetail:
		return "post_detail"
	default:
		return fmt.Sprintf("endpoint(%d)", int(e))
	}
}

type route struct {
	path     string
	endpoint Endpoint
}

// routes is matched in order; "/new" must precede the "/:id" catch-all.
var routes = []route{
	{path: "/", endpoint: EndpointIndex},
	{path: "/new", endpoint: EndpointNewPost},
	{path: "/:id", endpoint: EndpointPostDetail},
}

// endpointHandler computes the outcome of a request; the dispatcher turns it into a response.
type endpointHandler func(c *fiber.Ctx) Outcome

type outcomeKind int

const (
	outcomeRender outcomeKind = iota
	outcomeRedirect
	outcomeNotFound
	outcomeHTTPError
	outcomeFailure
)

// Outcome is the result of an endpoint handler.
type Outcome struct {
	kind     outcomeKind
	view     string
	bind     fiber.Map
	location string
	code     int
	message  string
	err      error
}

// Render answers 200 with view rendered inside the base layout.
func Render(view string, bind fiber.Map) Outcome {
	return Outcome{kind: outcomeRender, view: view, bind: bind}
}

// Redirect answers 302 to location.
func Redirect(location string) Outcome {
	return Outcome{kind: outcomeRedirect, location: location}
}

// NotFound answers 404 with the error page.
func NotFound() Outcome {
	return Outcome{kind: outcomeNotFound}
}

// HTTPError answers with code and message unchanged.
func HTTPError(code int, message string) Outcome {
	return Outcome{kind: outcomeHTTPError, code: code, message: message}
}

// Failure reports an unexpected error; the client gets a generic 500.
func Failure(err error) Outcome {
	return Outcome{kind: outcomeFailure, err: err}
}

func (s *Server) endpointTable() map[Endpoint]endpointHandler {
	return map[Endpoint]endpointHandler{
		EndpointIndex:      s.index,
		EndpointNewPost:    s.newPost,
		EndpointPostDetail: s.postDetail,
	}
}

// registerEndpoints binds every route to its handler for GET (and HEAD) and POST.
func (s *Server) registerEndpoints(router fiber.Router) {
	table := s.endpointTable()
	for _, rt := range routes {
		h, ok := table[rt.endpoint]
		if !ok {
			panic(fmt.Sprintf("server: no handler for endpoint %s", rt.endpoint))
		}
		handler := s.dispatch(h)
		router.Get(rt.path, handler)
		router.Post(rt.path, handler)
	}
}

func (s *Server) dispatch(h endpointHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.respond(c, h(c))
	}
}

func (s *Server) respond(c *fiber.Ctx, out Outcome) error {
	switch out.kind {
	case outcomeRender:
		return c.Render(out.view, out.bind)
	case outcomeRedirect:
		return c.Redirect(out.location, fiber.StatusFound)
	case outcomeNotFound:
		return s.renderNotFound(c)
	case outcomeHTTPError:
		return fiber.NewError(out.code, out.message)
	default:
		if out.err == nil {
			return errors.New("handler failed without an error")
		}
		return out.err
	}
}

func (s *Server) renderNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("error", fiber.Map{
		"Title": "Not found",
	})
}

// ErrorHandler renders the error page for unknown paths and missing posts, passes other
// HTTP errors through unchanged and hides everything else behind a plain 500.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code != fiber.StatusNotFound {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(fe.Code).SendString(fe.Message)
	}

	if (fe != nil && fe.Code == fiber.StatusNotFound) || models.IsNotFound(err) {
		if renderErr := s.renderNotFound(c); renderErr != nil {
			observability.Logger.ErrorContext(c.UserContext(), "render error page", "error", renderErr)
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.Status(fiber.StatusNotFound).SendString("Not Found")
		}
		return nil
	}

	observability.Logger.ErrorContext(c.UserContext(), "unhandled request error",
		"error", err.Error(),
		"method", c.Method(),
		"path", c.Path(),
	)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
}
