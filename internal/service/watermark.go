package service

import "strings"

// freeTierWatermark is the attribution banner injected into free-plan
// output. It replaces the first closing body tag so it renders above the
// generated content in every browser.
const freeTierWatermark = `
<!-- Free plan attribution -->
<div style="position: fixed; bottom: 20px; right: 20px; z-index: 99999; background: rgba(0,0,0,0.8); backdrop-filter: blur(10px); padding: 8px 16px; border-radius: 8px; font-family: system-ui, -apple-system, sans-serif;">
  <a href="https://genforge.app" target="_blank" style="color: #fff; text-decoration: none; font-size: 12px; display: flex; align-items: center; gap: 6px;">
    <span>&#10024;</span>
    <span>Built with GenForge</span>
  </a>
</div>
</body>`

// injectWatermark inserts the attribution banner immediately before the
// first closing body tag. Documents without a closing body tag are returned
// unmodified; a malformed document is never a reason to fail the request.
func injectWatermark(html string) string {
	return strings.Replace(html, "</body>", freeTierWatermark, 1)
}
