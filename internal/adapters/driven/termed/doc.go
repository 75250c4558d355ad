// Package termed implements driven.SourceGateway over the Termed graph API.
//
// All reads go through the node-trees endpoint with select/where/max query
// parameters. Transport failures abort the calling sync run; error responses
// from the API are logged and read as an empty result.
package termed
