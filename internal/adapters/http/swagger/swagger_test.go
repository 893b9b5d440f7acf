package swagger_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/nvoss/goalfeed/internal/adapters/http/swagger"
)

func TestSwaggerRoutes(t *testing.T) {
	Convey("Given registered docs routes", t, func() {
		r := chi.NewRouter()
		swagger.Register(context.Background(), r)
		srv := httptest.NewServer(r)
		defer srv.Close()

		Convey("When fetching the viewer page", func() {
			resp, err := http.Get(srv.URL + "/api-docs")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should serve HTML referencing the API document", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "text/html")
			})
		})

		Convey("When fetching the OpenAPI document", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then it should serve the embedded YAML", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldContainSubstring, "yaml")

				body, err := io.ReadAll(resp.Body)
				So(err, ShouldBeNil)
				So(string(body), ShouldContainSubstring, "goalfeed")
				So(string(body), ShouldContainSubstring, "/stream")
			})
		})
	})
}
