// Package news fetches articles from GNews, a newsreel backend or an
// offline file, with a timeout race and a cache fallback so the UI always
// has something to show.
package news
