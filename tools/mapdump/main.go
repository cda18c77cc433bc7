// Command mapdump composes an import map and dumps its rules.
//
// It builds the alias table for one compilation context of the project
// in -project and prints every rule with its provenance, as text or
// JSON. With -explain it reports the winning rule for one specifier
// instead of the full table.
//
// Usage:
//
//	go run ./tools/mapdump -routing app-rsc -project .
//	go run ./tools/mapdump -routing pages-browser -dir ./pages -mode build -output json
//	go run ./tools/mapdump -routing middleware -runtime edge -explain react-dom/server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	goimportmap "github.com/albertocavalcante/go-importmap"
	"github.com/albertocavalcante/go-importmap/inspect"
)

func main() {
	routing := flag.String("routing", "app-rsc", "routing style: pages-browser, app-browser, fallback-browser, other-browser, pages-ssr, pages-data, app-ssr, app-rsc, app-route, middleware")
	dir := flag.String("dir", "", "routing source directory; defaults to pages/ or app/ under the project root")
	project := flag.String("project", ".", "project root directory")
	mode := flag.String("mode", "development", "build mode: development or build")
	runtime := flag.String("runtime", "nodejs", "server runtime: nodejs or edge")
	serverActions := flag.Bool("server-actions", false, "enable server actions")
	mdx := flag.Bool("mdx", false, "enable the MDX import source")
	output := flag.String("output", "text", "output format: text or json")
	explain := flag.String("explain", "", "explain one specifier instead of dumping the table")
	flag.Parse()

	proj, err := filepath.Abs(*project)
	if err != nil {
		fatalf("Error resolving project root: %v", err)
	}

	lc := goimportmap.LayerContext{
		Mode:        goimportmap.BuildMode(*mode),
		Runtime:     goimportmap.RuntimeTarget(*runtime),
		Flags:       goimportmap.FeatureFlags{ServerActions: *serverActions, MDX: *mdx},
		ProjectRoot: proj,
	}
	lc.Routing, err = routingStyle(*routing, *dir, proj)
	if err != nil {
		fatalf("Error: %v", err)
	}

	m, err := goimportmap.Compose(context.Background(), lc)
	if err != nil {
		fatalf("Error composing import map: %v", err)
	}

	var out renderable
	if *explain != "" {
		out = inspect.Explain(m, *explain)
	} else {
		out = inspect.New(m)
	}

	switch *output {
	case "json":
		data, err := out.ToJSON()
		if err != nil {
			fatalf("Error rendering JSON: %v", err)
		}
		fmt.Printf("%s\n", data)
	case "text":
		fmt.Print(out.ToText())
	default:
		fatalf("Error: unknown output format %q", *output)
	}
}

// renderable is satisfied by reports and explanations alike.
type renderable interface {
	ToJSON() ([]byte, error)
	ToText() string
}

// routingStyle maps a flag value onto a RoutingStyle constructor.
// Styles that need a source directory fall back to the conventional
// pages/ or app/ directory under the project root.
func routingStyle(name, dir, proj string) (goimportmap.RoutingStyle, error) {
	resolve := func(conventional string) string {
		switch {
		case dir == "":
			return filepath.Join(proj, conventional)
		case filepath.IsAbs(dir):
			return filepath.Clean(dir)
		default:
			return filepath.Join(proj, dir)
		}
	}

	switch name {
	case "pages-browser":
		return goimportmap.PagesBrowser(resolve("pages")), nil
	case "app-browser":
		return goimportmap.AppBrowser(resolve("app")), nil
	case "fallback-browser":
		return goimportmap.FallbackBrowser(), nil
	case "other-browser":
		return goimportmap.OtherBrowser(), nil
	case "pages-ssr":
		return goimportmap.PagesSSR(resolve("pages")), nil
	case "pages-data":
		return goimportmap.PagesData(resolve("pages")), nil
	case "app-ssr":
		return goimportmap.AppSSR(resolve("app")), nil
	case "app-rsc":
		return goimportmap.AppRSC(resolve("app")), nil
	case "app-route":
		return goimportmap.AppRoute(resolve("app")), nil
	case "middleware":
		return goimportmap.Middleware(), nil
	default:
		return goimportmap.RoutingStyle{}, fmt.Errorf("unknown routing style %q", name)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
