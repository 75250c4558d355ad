// Package elastic implements driven.IndexGateway over Elasticsearch.
//
// Documents are keyed by "graph/concept". Point reads go through _mget so
// the key never has to be escaped into a URL path.
package elastic
