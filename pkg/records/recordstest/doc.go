/*
Package recordstest provides an in-memory stand-in for the remote record database,
served over HTTP so clients can be exercised end to end in tests.

	srv := recordstest.NewServer()
	defer srv.Close()

	client, err := records.New(records.Config{Host: srv.Host(), Port: srv.Port()}, nil, nil)
*/
package recordstest
