// Package renderer loads the embedded text templates under scripts/renderer/templates/ and
// renders them with sprig functions.
//
// Example:
//
//	out, err := renderer.Render(renderer.TplInfo, renderer.InfoData{
//	    Service: "photos",
//	    Stack:   "photos-dev",
//	})
//	if err != nil { return err }
//	fmt.Print(out)
package renderer
