package feed

const atomThreeEntries = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <id>urn:uuid:feed</id>
  <updated>2024-03-01T10:00:00Z</updated>
  <entry>
    <title>First entry</title>
    <link rel="alternate" href="https://example.com/posts/first"/>
    <id>urn:uuid:1</id>
    <author><name>Ada</name></author>
    <updated>2024-03-01T10:00:00Z</updated>
    <summary>One</summary>
  </entry>
  <entry>
    <title>Second entry</title>
    <link rel="alternate" href="https://example.com/posts/second"/>
    <id>urn:uuid:2</id>
    <updated>2024-02-01T10:00:00Z</updated>
  </entry>
  <entry>
    <title>Third entry</title>
    <link rel="alternate" href="https://example.com/posts/third"/>
    <id>urn:uuid:3</id>
    <updated>2024-01-01T10:00:00Z</updated>
  </entry>
</feed>`

const rssTwoItems = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example RSS</title>
    <link>https://example.com/</link>
    <description>test</description>
    <item>
      <title>Item one</title>
      <link>https://example.com/item-one</link>
      <guid>item-1</guid>
      <pubDate>Mon, 04 Mar 2024 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Item two</title>
      <guid isPermaLink="false">item-2</guid>
      <description>no link here</description>
    </item>
  </channel>
</rss>`

const emptyRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title></title></channel></rss>`

// scrapePage has four anchors; only the slug one survives.
const scrapePage = `<!doctype html>
<html><head><title> My Blog </title></head>
<body>
  <a href="/">Home</a>
  <a href="https://other.example.org/blog/some-long-article">Elsewhere entirely</a>
  <a href="/about">About</a>
  <a href="/blog/my-article-slug">Read more</a>
</body></html>`

const noAnchorsPage = `<!doctype html>
<html><head><title>Empty</title></head>
<body><p>Nothing to see.</p><a href="/x">x</a></body></html>`
