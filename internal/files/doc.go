// Package files presents the printer's three storage backends behind one
// descriptor type.
//
// # Backends
//
//	Backend  Page          List entity                     Caps
//	local    local-files   sensor.<part>_file_list_local   list,delete,refresh
//	udisk    udisk-files   sensor.<part>_file_list_udisk   list,delete,refresh
//	cloud    cloud-files   sensor.<part>_file_list_cloud   list,delete,refresh,download
//
// Capabilities are explicit bits on the descriptor. Views check Caps before
// offering an action; DownloadRequest on a backend without CapDownload
// returns ErrUnsupported.
//
// # Listings
//
// The integration publishes each listing as the file_info attribute of the
// list sensor. ListFiles reads it and never fails: a missing entity or
// attribute is an empty listing. Refreshing presses
// button.<part>_request_file_list_<kind>; the new listing arrives later as a
// state change. Listings are never cached beyond the snapshot they came from.
//
// # Requests
//
// Delete and download calls share the payload
//
//	{config_entry, device_id, filename}
//
// and are only built when both the device and the file name are known.
package files
