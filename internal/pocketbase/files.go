package pocketbase

import "net/url"

// FileURL builds the public URL of a file stored on a record. It returns ""
// when any part is missing.
func (c *Client) FileURL(collection, recordID, filename string) string {
	if collection == "" || recordID == "" || filename == "" {
		return ""
	}
	return c.baseURL.JoinPath("api", "files", url.PathEscape(collection), url.PathEscape(recordID), url.PathEscape(filename)).String()
}
