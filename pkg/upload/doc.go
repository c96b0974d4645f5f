// Package upload implements the streaming image-upload pipeline for
// collaborative pads.
//
// A pad client POSTs a multipart body to the upload endpoint. The
// handler never buffers the file: the multipart stream is consumed
// part by part, the configured limits are enforced while bytes are
// still arriving, and the file part is piped straight into a storage
// backend (local disk or S3). The caller receives a single JSON
// result, either the access URL of the stored object or a typed
// error.
//
// # Pipeline
//
//  1. Handler binds the request to a pad id and opens a
//     multipart.Reader over the body.
//  2. Session walks the parts until it finds the file part, checks
//     the extension/mimetype policy, then streams the part into the
//     Store through a byte-counting limit reader.
//  3. The moment the cumulative size passes the configured maximum
//     the stream fails with ErrTooLarge; the store deletes whatever
//     it already wrote before the error is reported.
//  4. The session resolves to exactly one Outcome, no matter how many
//     stream events fire; the handler writes exactly one response.
//
// # Usage
//
// Mount the handler in your router:
//
//	h := upload.NewHandler(cfg, store, logger)
//	r.Post("/p/{padID}/pluginfw/ep_image_upload/upload", h.Upload)
package upload
