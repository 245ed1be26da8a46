package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentType(t *testing.T) {
	ct, ok := ContentType("Logo.PNG")
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)

	ct, ok = ContentType("photo.jpeg")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)

	_, ok = ContentType("script.exe")
	assert.False(t, ok)
	_, ok = ContentType("noext")
	assert.False(t, ok)
}

func TestObjectName(t *testing.T) {
	now := time.Unix(1700000000, 0)
	name := ObjectName(KindLogo, "Логотип.PNG", now)

	assert.True(t, strings.HasPrefix(name, "logos/"))
	assert.True(t, strings.HasSuffix(name, "_1700000000.png"))
	assert.Len(t, name, len("logos/")+8+len("_1700000000.png"))
	assert.NotEqual(t, name, ObjectName(KindLogo, "Логотип.PNG", now))
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://cdn/bucket/logos/a.png", JoinURL("http://cdn/bucket/", "/logos/a.png"))
	assert.Equal(t, "https://old.site/a.png", JoinURL("http://cdn/bucket", "https://old.site/a.png"))
	assert.Equal(t, "", JoinURL("http://cdn", ""))
	assert.True(t, IsAbsoluteURL("http://x"))
	assert.False(t, IsAbsoluteURL("logos/x.png"))
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("12345"), 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	_, err = ReadLimited(strings.NewReader("123456"), 5)
	assert.Error(t, err)
}

func TestUnsupportedType(t *testing.T) {
	m := &MinIOClient{}
	_, err := m.UploadFile(context.Background(), KindLogo, []byte("x"), "file.txt")
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}
